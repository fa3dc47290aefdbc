package idp_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradeport-services/idp"

	"github.com/lestrrat-go/jwx/jwa"
	"github.com/lestrrat-go/jwx/jwk"
	"github.com/lestrrat-go/jwx/jws"
	"github.com/lestrrat-go/jwx/jwt"
	"github.com/lestrrat-go/jwx/jwt/openid"
)

const testKeyID = "test-key"

type provider struct {
	key    *rsa.PrivateKey
	server *httptest.Server
}

// newProvider stands in for the identity provider: an RSA keypair with
// the public half served as a JWKS.
func newProvider(t *testing.T) *provider {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	pub, err := jwk.New(key.Public())
	if err != nil {
		t.Fatal(err)
	}
	if err := pub.Set(jwk.KeyIDKey, testKeyID); err != nil {
		t.Fatal(err)
	}
	if err := pub.Set(jwk.AlgorithmKey, jwa.RS256.String()); err != nil {
		t.Fatal(err)
	}

	set := jwk.NewSet()
	set.Add(pub)
	body, err := json.Marshal(set)
	if err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)

	return &provider{key: key, server: server}
}

func (p *provider) serviceAccount() *idp.ServiceAccount {
	return &idp.ServiceAccount{
		ProjectID: "tradeport-test",
		Issuer:    "https://issuer.test",
		Audience:  "tradeport-test",
		JWKSURL:   p.server.URL,
	}
}

func (p *provider) sign(t *testing.T, email string, expires time.Time) string {
	t.Helper()

	token := openid.New()
	claims := map[string]interface{}{
		jwt.IssuerKey:     "https://issuer.test",
		jwt.AudienceKey:   "tradeport-test",
		jwt.IssuedAtKey:   time.Now().Add(-time.Minute),
		jwt.ExpirationKey: expires,
	}
	if email != "" {
		claims[openid.EmailKey] = email
	}
	for name, value := range claims {
		if err := token.Set(name, value); err != nil {
			t.Fatal(err)
		}
	}

	headers := jws.NewHeaders()
	if err := headers.Set(jws.KeyIDKey, testKeyID); err != nil {
		t.Fatal(err)
	}

	signed, err := jwt.Sign(token, jwa.RS256, p.key, jwt.WithHeaders(headers))
	if err != nil {
		t.Fatal(err)
	}
	return string(signed)
}

func TestVerify(t *testing.T) {
	p := newProvider(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	verifier, err := idp.NewVerifier(ctx, p.serviceAccount())
	if err != nil {
		t.Fatal(err)
	}

	t.Run("valid_token", func(t *testing.T) {
		raw := p.sign(t, "a@x.com", time.Now().Add(time.Hour))
		email, err := verifier.Verify(ctx, raw)
		if err != nil {
			t.Fatal(err)
		}
		if email != "a@x.com" {
			t.Fatalf("verified email = %q, want a@x.com", email)
		}
	})

	t.Run("expired_token", func(t *testing.T) {
		raw := p.sign(t, "a@x.com", time.Now().Add(-time.Hour))
		_, err := verifier.Verify(ctx, raw)
		if err == nil {
			t.Fatal("expired token verified")
		}
	})

	t.Run("malformed_token", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "not-a-token")
		if err == nil {
			t.Fatal("malformed token verified")
		}
	})

	t.Run("missing_email_claim", func(t *testing.T) {
		raw := p.sign(t, "", time.Now().Add(time.Hour))
		_, err := verifier.Verify(ctx, raw)
		if err == nil {
			t.Fatal("token without email claim verified")
		}
	})

	t.Run("wrong_signer", func(t *testing.T) {
		other := newProvider(t)
		raw := other.sign(t, "a@x.com", time.Now().Add(time.Hour))
		_, err := verifier.Verify(ctx, raw)
		if err == nil {
			t.Fatal("token signed by unknown key verified")
		}
	})
}

func TestDecodeServiceAccount(t *testing.T) {
	sa := &idp.ServiceAccount{
		ProjectID: "tradeport-test",
		Issuer:    "https://issuer.test",
		Audience:  "tradeport-test",
		JWKSURL:   "https://issuer.test/jwks.json",
	}
	raw, err := json.Marshal(sa)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := idp.DecodeServiceAccount(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.JWKSURL != sa.JWKSURL || decoded.Issuer != sa.Issuer {
		t.Fatalf("decoded %+v, want %+v", decoded, sa)
	}

	_, err = idp.DecodeServiceAccount("%%%not-base64%%%")
	if err == nil {
		t.Fatal("garbage blob decoded")
	}

	_, err = idp.DecodeServiceAccount(base64.StdEncoding.EncodeToString([]byte(`{}`)))
	if err == nil {
		t.Fatal("blob without jwks_url accepted")
	}
}
