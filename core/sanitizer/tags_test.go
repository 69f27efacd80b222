package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/core/sanitizer"
)

func TestSanitizeStruct_BasicFields(t *testing.T) {
	t.Parallel()

	type Nested struct {
		Code string `sanitize:"digits"`
	}
	type TestStruct struct {
		Email   string   `sanitize:"trim_lower"`
		Name    string   `sanitize:"single_line"`
		INN     string   `sanitize:"no_whitespace"`
		Message string   `sanitize:"text"`
		Short   string   `sanitize:"trim,max:3"`
		Tags    []string `sanitize:"trim"`
		Ptr     *string  `sanitize:"trim"`
		Nested  Nested
		NoTag   string
		Skip    string `sanitize:"-"`
		Unknown string `sanitize:"nope,trim"`
	}

	ptr := "  p  "
	in := TestStruct{
		Email:   "  USER@Example.COM ",
		Name:    " Anna\r\n\tSmith\x00 ",
		INN:     " 7707 083 893 ",
		Message: "\r\n line one\r\nline\x07 two \r\n",
		Short:   "  привет ",
		Tags:    []string{" a ", "b "},
		Ptr:     &ptr,
		Nested:  Nested{Code: "12-34 x"},
		NoTag:   "  keep  ",
		Skip:    "  keep  ",
		Unknown: " x ",
	}
	require.NoError(t, sanitizer.SanitizeStruct(&in))

	assert.Equal(t, "user@example.com", in.Email)
	assert.Equal(t, "Anna Smith", in.Name)
	assert.Equal(t, "7707083893", in.INN)
	assert.Equal(t, "line one\nline two", in.Message)
	assert.Equal(t, "при", in.Short)
	assert.Equal(t, []string{"a", "b"}, in.Tags)
	assert.Equal(t, "p", *in.Ptr)
	assert.Equal(t, "1234", in.Nested.Code)
	assert.Equal(t, "  keep  ", in.NoTag)
	assert.Equal(t, "  keep  ", in.Skip)
	assert.Equal(t, "x", in.Unknown)
}

func TestSanitizeStruct_InvalidInput(t *testing.T) {
	t.Parallel()

	type S struct{ Name string }
	assert.Error(t, sanitizer.SanitizeStruct(S{}))
	s := "x"
	assert.Error(t, sanitizer.SanitizeStruct(&s))
}

func TestRegisterSanitizer(t *testing.T) {
	t.Parallel()

	sanitizer.RegisterSanitizer("shout", func(s string) string { return strings.ToUpper(s) + "!" })

	type S struct {
		Word string `sanitize:"trim,shout"`
	}
	s := S{Word: " hey "}
	require.NoError(t, sanitizer.SanitizeStruct(&s))
	assert.Equal(t, "HEY!", s.Word)
}

func TestStringHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", sanitizer.MaxLength("abc", 0))
	assert.Equal(t, "abc", sanitizer.MaxLength("abc", 5))
	assert.Equal(t, "a b", sanitizer.RemoveExtraWhitespace("  a \n\n b "))
	assert.Equal(t, "a\nb\tc", sanitizer.RemoveControlChars("a\nb\tc\x1b"))
	assert.Equal(t, "Subject line", sanitizer.SingleLine("Subject\r\nline"))
}
