// This file parses and validates request bodies and query strings.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"anggaran/internal/core"
	"anggaran/internal/store"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report JSON field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Amount decodes a JSON number or string through core.ParseAmount, so "Rp
// 25000", "25000" and 25000 are the same and malformed input becomes 0.
type Amount int64

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = 0
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*a = Amount(core.ParseAmount(s))
	return nil
}

func (a Amount) Int64() int64 { return int64(a) }

// decodeJSON reads one JSON object into dst and validates it.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("%w: body larger than %d bytes", errBadRequest, maxBodyBytes)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return fmt.Errorf("%w: empty body", errBadRequest)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	return validate.Struct(dst)
}

func validationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// ParseTransactionFilter reads ?type=ALL|EXPENSE|INCOME, ?q= and ?limit=.
func ParseTransactionFilter(q url.Values) (store.TransactionFilter, error) {
	var f store.TransactionFilter
	switch t := strings.ToUpper(strings.TrimSpace(q.Get("type"))); t {
	case "", "ALL":
	case string(core.TypeExpense), string(core.TypeIncome):
		f.Type = core.TransactionType(t)
	default:
		return f, fmt.Errorf("%w: transaction type %q", core.ErrInvalidType, t)
	}
	f.Search = sanitizeInput(q.Get("q"))
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("%w: limit %q", errBadRequest, v)
		}
		f.Limit = n
	}
	return f, nil
}

// ParseRotationDay reads ?day=1..10 as a zero-based rotation index. Missing
// means today; other numbers wrap around the cycle.
func ParseRotationDay(q url.Values) (*int, error) {
	v := strings.TrimSpace(q.Get("day"))
	if v == "" {
		return nil, nil
	}
	day, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%w: day %q", errBadRequest, v)
	}
	index := day - 1
	return &index, nil
}

// ParseMenuType defaults to MATANG.
func ParseMenuType(q url.Values) core.MenuType {
	t := strings.ToUpper(strings.TrimSpace(q.Get("type")))
	if t == "" {
		return core.MenuCooked
	}
	return core.MenuType(t)
}

// bearerToken returns the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
