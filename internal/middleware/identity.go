package middleware

import (
	"bytes"
	"crypto/ed25519"
	"io"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

// Header names carrying the caller's identity proof. The client signs the
// raw request body with its ed25519 key and sends the base58 public key and
// signature alongside.
const (
	IdentityHeader  = "X-Identity"
	SignatureHeader = "X-Signature"
)

// IdentityKey is the gin context key holding the verified caller address.
const IdentityKey = "identity"

// CallerIdentity returns the verified caller address set by RequireIdentity.
func CallerIdentity(c *gin.Context) string {
	return c.GetString(IdentityKey)
}

// RequireIdentity authenticates mutating calls. The caller identity is never
// taken from the request payload; it is the public key that produced a valid
// signature over the body.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.GetHeader(IdentityHeader)
		signature := c.GetHeader(SignatureHeader)
		if identity == "" || signature == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity headers"})
			return
		}

		pubkey, err := solana.PublicKeyFromBase58(identity)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid identity"})
			return
		}
		sig, err := solana.SignatureFromBase58(signature)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}
		// Hand the body back to the JSON binder downstream
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		if !ed25519.Verify(ed25519.PublicKey(pubkey[:]), body, sig[:]) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "signature verification failed"})
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}
