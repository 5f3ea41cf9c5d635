package jwt

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/forohub/auth"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

var ana = &auth.Identity{ID: 42, Login: "ana@forohub.com", Enabled: true}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestCodec(t *testing.T, secret string, clock *fakeClock) *Codec {
	t.Helper()
	var opts []Option
	if clock != nil {
		opts = append(opts, WithClock(clock.Now))
	}
	c, err := NewCodec(Config{Secret: secret}, opts...)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestNewCodec_Config(t *testing.T) {
	if _, err := NewCodec(Config{}); err == nil {
		t.Error("expected error for missing secret")
	}
	if _, err := NewCodec(Config{Secret: testSecret, Lifetime: time.Millisecond}); err == nil {
		t.Error("expected error for sub-second lifetime")
	}
	c := newTestCodec(t, testSecret, nil)
	if c.Lifetime() != DefaultLifetime {
		t.Errorf("expected default lifetime, got %v", c.Lifetime())
	}
}

func TestCodec_IssueVerify_RoundTrip(t *testing.T) {
	c := newTestCodec(t, testSecret, nil)

	token, err := c.Issue(ana)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected three-part token, got %q", token)
	}

	sub, err := c.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sub != ana.Login {
		t.Errorf("expected subject %q, got %q", ana.Login, sub)
	}
}

func TestCodec_Claims(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 500, time.UTC)}
	c := newTestCodec(t, testSecret, clock)

	token, _ := c.Issue(ana)
	claims, err := c.Claims(token)
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if claims.Issuer != Issuer {
		t.Errorf("expected issuer %q, got %q", Issuer, claims.Issuer)
	}
	if claims.UserID != 42 {
		t.Errorf("expected id 42, got %d", claims.UserID)
	}
	iat := claims.IssuedAt.Time
	if !iat.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected iat %v", iat)
	}
	if got := claims.ExpiresAt.Sub(iat); got != time.Hour {
		t.Errorf("expected exp-iat of 1h, got %v", got)
	}
}

func TestCodec_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	c := newTestCodec(t, testSecret, clock)
	token, _ := c.Issue(ana)

	clock.Advance(time.Hour - time.Second)
	if _, err := c.Verify(token); err != nil {
		t.Fatalf("token should still be valid one second before exp: %v", err)
	}

	clock.Advance(time.Second)
	if _, err := c.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("token must be invalid at exp, got %v", err)
	}
}

func TestCodec_Verify_Rejects(t *testing.T) {
	c := newTestCodec(t, testSecret, nil)
	good, _ := c.Issue(ana)
	parts := strings.Split(good, ".")

	tamperedSig := parts[2]
	if tamperedSig[0] == 'A' {
		tamperedSig = "B" + tamperedSig[1:]
	} else {
		tamperedSig = "A" + tamperedSig[1:]
	}

	payload, _ := base64.RawURLEncoding.DecodeString(parts[1])
	var m map[string]interface{}
	_ = json.Unmarshal(payload, &m)
	m["iss"] = "someone-else"
	forged, _ := json.Marshal(m)
	wrongIssPayload := parts[0] + "." + base64.RawURLEncoding.EncodeToString(forged) + "." + parts[2]

	otherSecret, _ := newTestCodec(t, "another-secret-that-is-32-bytes-long!!", nil).Issue(ana)

	now := time.Now()
	foreign, _ := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &Claims{
		UserID: 42,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    "other-service",
			Subject:   ana.Login,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))

	noSubject, _ := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: gojwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))

	noExpiry, _ := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Issuer: Issuer, Subject: ana.Login},
	}).SignedString([]byte(testSecret))

	algNone, _ := gojwt.NewWithClaims(gojwt.SigningMethodNone, &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   ana.Login,
			ExpiresAt: gojwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString(gojwt.UnsafeAllowNoneSignatureType)

	hs512, _ := gojwt.NewWithClaims(gojwt.SigningMethodHS512, &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   ana.Login,
			ExpiresAt: gojwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two parts", parts[0] + "." + parts[1]},
		{"tampered signature", parts[0] + "." + parts[1] + "." + tamperedSig},
		{"issuer changed without re-signing", wrongIssPayload},
		{"signed with another secret", otherSecret},
		{"foreign issuer same secret", foreign},
		{"missing subject", noSubject},
		{"missing expiry", noExpiry},
		{"alg none", algNone},
		{"other algorithm", hs512},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub, err := c.Verify(tc.token)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Fatalf("expected ErrTokenInvalid, got sub=%q err=%v", sub, err)
			}
		})
	}
}

func TestCodec_SecretRotation(t *testing.T) {
	token, _ := newTestCodec(t, testSecret, nil).Issue(ana)
	rotated := newTestCodec(t, testSecret+"-rotated", nil)
	if _, err := rotated.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("rotated secret must invalidate old tokens, got %v", err)
	}
}

func TestCodec_Issue_NoLogin(t *testing.T) {
	c := newTestCodec(t, testSecret, nil)
	if _, err := c.Issue(&auth.Identity{ID: 1}); !errors.Is(err, ErrTokenIssuance) {
		t.Errorf("expected ErrTokenIssuance, got %v", err)
	}
	if _, err := c.Issue(nil); !errors.Is(err, ErrTokenIssuance) {
		t.Errorf("expected ErrTokenIssuance for nil identity, got %v", err)
	}
}

func TestCodec_ConcurrentUse(t *testing.T) {
	c := newTestCodec(t, testSecret, nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := c.Issue(ana)
			if err != nil {
				t.Errorf("Issue: %v", err)
				return
			}
			if _, err := c.Verify(token); err != nil {
				t.Errorf("Verify: %v", err)
			}
		}()
	}
	wg.Wait()
}
