package catalog

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/erazemk/zbirka/internal/attrs"
	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/model"
)

// NewCollection is the input for creating a collection.
type NewCollection struct {
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// CollectionUpdate replaces a collection's name and description.
type CollectionUpdate struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// NewItem is the input for creating an item. An empty Type inherits the
// collection's type.
type NewItem struct {
	Title       string           `json:"title" validate:"required"`
	Type        string           `json:"type"`
	Description string           `json:"description"`
	Attributes  attrs.Attributes `json:"attributes"`
	Cover       *model.Blob      `json:"-"`
}

// ItemUpdate fully replaces an item's editable fields. A nil Cover keeps the
// current cover image.
type ItemUpdate struct {
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description"`
	Attributes  attrs.Attributes `json:"attributes"`
	Cover       *model.Blob      `json:"-"`
}

type categoryName struct {
	Name string `json:"name" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// check runs the struct's presence checks, reporting the first failing field.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fe := errs[0]
		if fe.Tag() == "required" {
			return &ValidationError{Field: fe.Field()}
		}
		return &ValidationError{Field: fe.Field(), Reason: fmt.Sprintf("failed %s check", fe.Tag())}
	}
	return &ValidationError{Field: "input", Reason: err.Error()}
}

func checkAttributes(a attrs.Attributes) error {
	if err := a.Validate(); err != nil {
		return &ValidationError{Field: "attributes", Reason: err.Error()}
	}
	return nil
}

// checkBlob sniffs an image payload and returns a copy carrying the detected
// MIME type. Whatever type the caller claimed is discarded.
func checkBlob(field string, b *model.Blob) (*model.Blob, error) {
	if b == nil {
		return nil, nil
	}
	if len(b.Data) == 0 {
		return nil, &ValidationError{Field: field, Reason: "empty file"}
	}
	mime, err := imaging.Sniff(b.Data)
	if err != nil {
		return nil, &ValidationError{Field: field, Reason: "not an image"}
	}
	return &model.Blob{Data: b.Data, MIME: mime}, nil
}

var textPolicy = bluemonday.StrictPolicy()

// maxCleanRounds bounds the entity unwrapping in cleanText.
const maxCleanRounds = 8

// cleanText strips markup and surrounding whitespace from user-entered text.
// The policy escapes what it keeps, so its output is decoded back to plain
// characters and sanitized again until nothing changes. Entity-encoded markup
// therefore cannot survive as live HTML. A "<" that does not open a tag, as in
// "a < b" or "x<3", is kept.
func cleanText(s string) string {
	for range maxCleanRounds {
		next := html.UnescapeString(textPolicy.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	// Still unwrapping: keep the escaped form, which renders as inert text.
	return strings.TrimSpace(textPolicy.Sanitize(s))
}
