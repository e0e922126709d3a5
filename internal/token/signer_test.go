package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amarthakur0/go-api-template/internal/domain"
)

func testKeyPairPEM(t *testing.T) ([]byte, []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})

	return privatePEM, publicPEM
}

func newTestSigner(t *testing.T, webExpiry, mobileExpiry time.Duration) *Signer {
	t.Helper()

	privatePEM, publicPEM := testKeyPairPEM(t)
	signer, err := NewSigner(privatePEM, publicPEM, "test-issuer", "test-audience", webExpiry, mobileExpiry)
	require.NoError(t, err)
	return signer
}

func TestSignerRoundTrip(t *testing.T) {
	signer := newTestSigner(t, 10*time.Minute, 480*time.Minute)

	issued, err := signer.Issue(42, domain.SourceWeb)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.AccessToken)
	assert.NotEmpty(t, issued.RefreshToken)
	assert.NotEmpty(t, issued.TokenID)
	assert.NotEqual(t, issued.RefreshToken, issued.TokenID)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), issued.ExpiresAt, 5*time.Second)

	claims, err := signer.Verify(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, domain.SourceWeb, claims.Source)
	assert.Equal(t, issued.TokenID, claims.TokenID)

	// The returned expiry round-trips through the exp claim exactly.
	assert.Zero(t, issued.ExpiresAt.Nanosecond())
	assert.True(t, claims.ExpiresAt.Equal(issued.ExpiresAt))
}

func TestSignerMobileExpiry(t *testing.T) {
	signer := newTestSigner(t, 10*time.Minute, 480*time.Minute)

	issued, err := signer.Issue(7, domain.SourceMobile)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(480*time.Minute), issued.ExpiresAt, 5*time.Second)

	claims, err := signer.Verify(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceMobile, claims.Source)
}

func TestSignerExpiredToken(t *testing.T) {
	signer := newTestSigner(t, time.Millisecond, time.Millisecond)

	issued, err := signer.Issue(1, domain.SourceWeb)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = signer.Verify(issued.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSignerRejectsForeignToken(t *testing.T) {
	signer := newTestSigner(t, 10*time.Minute, 480*time.Minute)
	other := newTestSigner(t, 10*time.Minute, 480*time.Minute)

	issued, err := other.Issue(1, domain.SourceWeb)
	require.NoError(t, err)

	_, err = signer.Verify(issued.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSignerRejectsTamperedToken(t *testing.T) {
	signer := newTestSigner(t, 10*time.Minute, 480*time.Minute)

	issued, err := signer.Issue(1, domain.SourceWeb)
	require.NoError(t, err)

	parts := strings.Split(issued.AccessToken, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	_, err = signer.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = signer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSignerRejectsWrongAudience(t *testing.T) {
	privatePEM, publicPEM := testKeyPairPEM(t)

	issuerSigner, err := NewSigner(privatePEM, publicPEM, "test-issuer", "audience-a", 10*time.Minute, 480*time.Minute)
	require.NoError(t, err)

	verifier, err := NewSigner(privatePEM, publicPEM, "test-issuer", "audience-b", 10*time.Minute, 480*time.Minute)
	require.NoError(t, err)

	issued, err := issuerSigner.Issue(1, domain.SourceWeb)
	require.NoError(t, err)

	_, err = verifier.Verify(issued.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssueGeneratesUniqueTokenIDs(t *testing.T) {
	signer := newTestSigner(t, 10*time.Minute, 480*time.Minute)

	first, err := signer.Issue(1, domain.SourceWeb)
	require.NoError(t, err)
	second, err := signer.Issue(1, domain.SourceWeb)
	require.NoError(t, err)

	assert.NotEqual(t, first.TokenID, second.TokenID)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}
