package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/auth"
	"github.com/Spok95/school-discipline/internal/models"
)

const maxEchoBody = 1 << 20

// functionSession is the bearer check of the plain endpoints: a missing header and a
// bad token both answer 401.
func functionSession(c *gin.Context) (*auth.Session, error) {
	if s := sessionOf(c); s != nil {
		return s, nil
	}
	if v, ok := c.Get(keyAuthErr); ok {
		if err, ok := v.(error); ok {
			return nil, err
		}
	}
	return nil, apperr.ErrUnauthenticated
}

// addRecord verifies the caller and echoes the JSON body without storing it. Persisted
// records go through POST /api/records.
func (h *handlers) addRecord(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	if _, err := functionSession(c); err != nil {
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEchoBody))
	if err != nil {
		plainErr(c, fmt.Errorf("read body: %w", err))
		return
	}
	received := json.RawMessage("null")
	if len(bytes.TrimSpace(body)) > 0 {
		if !json.Valid(body) {
			c.String(http.StatusBadRequest, "Invalid JSON body")
			return
		}
		received = body
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "received": received})
}

// setUserClaims: only an admin caller may set {role, assignedClasses} on the target.
func (h *handlers) setUserClaims(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	sess, err := functionSession(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	var in models.SetClaimsInput
	if err := bindJSON(c, &in); err != nil {
		respondErr(c, err)
		return
	}
	if err := h.Users.SetUserClaims(c.Request.Context(), sess, in); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// syncRules replaces the rules table with the built-in catalog.
func (h *handlers) syncRules(c *gin.Context) {
	if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodGet {
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	sess, err := functionSession(c)
	if err != nil {
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}
	n, err := h.Rules.Sync(c.Request.Context(), sess)
	if err != nil {
		if errors.Is(err, apperr.ErrPermission) {
			c.String(http.StatusForbidden, "Forbidden")
			return
		}
		plainErr(c, err)
		return
	}
	c.String(http.StatusOK, fmt.Sprintf("Synced %d rules", n))
}
