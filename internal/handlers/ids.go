package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// parseID returns raw in canonical uuid form.
func parseID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// pathID reads a uuid path param and answers 400 when it is malformed.
func pathID(c *gin.Context, param, label string) (string, bool) {
	id, ok := parseID(c.Param(param))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + label + " id"})
		return "", false
	}
	return id, true
}

// sameUser compares two user ids by value, ignoring uuid formatting.
func sameUser(a, b string) bool {
	if pa, ok := parseID(a); ok {
		a = pa
	}
	if pb, ok := parseID(b); ok {
		b = pb
	}
	return a == b
}
