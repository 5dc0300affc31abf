package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/inventory-sales-api/pkg/apperror"
	"github.com/oksasatya/inventory-sales-api/pkg/response"
	"github.com/oksasatya/inventory-sales-api/pkg/validation"
)

// bind decodes the JSON body into dst and writes a 400 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Fail(c, apperror.Validation("invalid payload", validation.ToDetails(err)))
		return false
	}
	return true
}

// fail writes err to the client. Internal errors are logged with their cause
// and the request id; the client only sees the generic message.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	var ae *apperror.Error
	if logger != nil && (!errors.As(err, &ae) || ae.Kind == apperror.KindInternal) {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	response.Fail(c, err)
}

func userID(c *gin.Context) string { return c.GetString("userID") }

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperror.Validation("invalid date", map[string]string{field: "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"})
}

var errCodeFormat = errors.New("code must be a string or a whole number")

// otpCode is a 6-digit code that clients may send either as "012345" or as
// the number 12345. Numbers are zero-padded back to six digits.
type otpCode string

func (o *otpCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*o = otpCode(strings.TrimSpace(s))
		return nil
	}
	n, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return errCodeFormat
	}
	*o = otpCode(fmt.Sprintf("%06d", n))
	return nil
}
