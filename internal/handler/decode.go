package handler

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Dan9191/todo-service/internal/common"
	"github.com/Dan9191/todo-service/internal/models"
)

const dateLayout = "2006-01-02"

// isForm reports whether the request carries an HTML form body.
func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data")
}

// decode reads a JSON body into v, or a form body through fromForm.
func decode(r *http.Request, v any, fromForm func(url.Values) error) error {
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("malformed form: %w", common.ErrValidation)
		}
		return fromForm(r.PostForm)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("malformed JSON body: %w", common.ErrValidation)
	}
	return nil
}

func decodeTodoPatch(r *http.Request) (models.TodoPatch, error) {
	var p models.TodoPatch
	err := decode(r, &p, func(f url.Values) error {
		p.Description = f.Get("description")
		p.ItemCategory = f.Get("itemCategory")
		p.StoreName = f.Get("storeName")
		complete, err := parseFlag(f, "isComplete")
		if err != nil {
			return err
		}
		p.IsComplete = complete != nil && *complete
		if q := strings.TrimSpace(f.Get("quantity")); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", common.ErrValidation)
			}
			p.Quantity = n
		}
		return nil
	})
	return p, err
}

func decodeRegistration(r *http.Request) (models.Registration, error) {
	var reg models.Registration
	err := decode(r, &reg, func(f url.Values) error {
		reg.Name = f.Get("name")
		reg.Username = f.Get("username")
		reg.Email = f.Get("email")
		reg.Password = f.Get("password")
		return nil
	})
	return reg, err
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decodeCredentials(r *http.Request) (credentials, error) {
	var c credentials
	err := decode(r, &c, func(f url.Values) error {
		c.Username = f.Get("username")
		c.Password = f.Get("password")
		return nil
	})
	return c, err
}

func decodeUserUpdate(r *http.Request) (models.UserUpdate, error) {
	var u models.UserUpdate
	err := decode(r, &u, func(f url.Values) error {
		u.Name = f.Get("name")
		u.Password = f.Get("password")
		return nil
	})
	return u, err
}

// parseDate reads a required ISO date as midnight in loc.
func parseDate(q url.Values, key string, loc *time.Location) (time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return time.Time{}, fmt.Errorf("%s is required: %w", key, common.ErrValidation)
	}
	t, err := time.ParseInLocation(dateLayout, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD: %w", key, common.ErrValidation)
	}
	return t, nil
}

// parseFlag reads an optional checkbox. A missing or empty value yields nil.
func parseFlag(q url.Values, key string) (*bool, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	var b bool
	switch strings.ToLower(v) {
	case "on", "yes":
		b = true
	case "off", "no":
		b = false
	default:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be a boolean: %w", key, common.ErrValidation)
		}
		b = parsed
	}
	return &b, nil
}
