// Package security holds the TLS settings for forohub's HTTPS listener.
//
//	server:
//	  tls:
//	    cert_file: /etc/forohub/tls/cert.pem
//	    key_file: /etc/forohub/tls/key.pem
//	    min_version: "1.3"
//
// Setting client_ca_file turns on mutual TLS.
package security
