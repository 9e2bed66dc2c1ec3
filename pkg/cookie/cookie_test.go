package cookie

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// futureDate returns a time ten seconds ahead with a non-zero millisecond part.
func futureDate() time.Time {
	return time.Now().Add(10 * time.Second).Truncate(time.Second).Add(437 * time.Millisecond)
}

func TestFromArgs_MissingName(t *testing.T) {
	_, err := FromArgs()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingName)

	var cerr *ConstructionError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "name", cerr.Field)
}

func TestFromArgs_MissingValue(t *testing.T) {
	_, err := FromArgs("asdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingValue)

	_, err = FromArgs("asdf", nil)
	assert.ErrorIs(t, err, ErrMissingValue)
}

func TestBuild_MissingName(t *testing.T) {
	c, err := Build(Attributes{Value: "dan"})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = New("", "dan")
	assert.ErrorIs(t, err, ErrMissingName)
}

func TestNew_TwoArguments(t *testing.T) {
	c, err := New("asdf", "dan")
	require.NoError(t, err)

	assert.Equal(t, "asdf", c.Name())
	assert.Equal(t, "dan", c.Value())
	assert.Equal(t, "/", c.Path())
	assert.Equal(t, "", c.Domain())
	assert.False(t, c.HasDomain())
	_, ok := c.Expiry()
	assert.False(t, ok)
	assert.False(t, c.IsSecure())
}

func TestNewWithPath_ThirdArgumentIsPath(t *testing.T) {
	c, err := NewWithPath("asdf", "dan", "/asdf")
	require.NoError(t, err)

	assert.Equal(t, "asdf", c.Name())
	assert.Equal(t, "dan", c.Value())
	assert.Equal(t, "/asdf", c.Path())
	assert.False(t, c.HasDomain())
	_, ok := c.Expiry()
	assert.False(t, ok)
	assert.False(t, c.IsSecure())
}

func TestFromArgs_ThreeArgumentsNeverBindDomain(t *testing.T) {
	c, err := FromArgs("asdf", "dan", "asdf.com")
	require.NoError(t, err)

	assert.Equal(t, "asdf.com", c.Path())
	assert.False(t, c.HasDomain())
}

func TestNewWithExpiry_TruncatesToSeconds(t *testing.T) {
	date := futureDate()
	c, err := NewWithExpiry("asdf", "dan", "/asdf", date)
	require.NoError(t, err)

	assert.Equal(t, "/asdf", c.Path())
	assert.False(t, c.HasDomain())
	expiry, ok := c.Expiry()
	require.True(t, ok)
	assert.Equal(t, date.UnixMilli()-date.UnixMilli()%1000, expiry.UnixMilli())
	assert.Zero(t, expiry.Nanosecond())
	assert.False(t, c.IsSecure())
}

func TestNewWithDomain(t *testing.T) {
	date := futureDate()
	c, err := NewWithDomain("asdf", "dan", "asdf.com", "/asdf", date)
	require.NoError(t, err)

	assert.Equal(t, "asdf", c.Name())
	assert.Equal(t, "dan", c.Value())
	assert.Equal(t, "/asdf", c.Path())
	assert.Equal(t, "asdf.com", c.Domain())
	expiry, ok := c.Expiry()
	require.True(t, ok)
	assert.True(t, expiry.Equal(date.Truncate(time.Second)))
	assert.False(t, c.IsSecure())
}

func TestNewSecure(t *testing.T) {
	date := futureDate()
	c, err := NewSecure("asdf", "dan", "asdf.com", "/asdf", date, true)
	require.NoError(t, err)

	assert.Equal(t, "asdf.com", c.Domain())
	assert.Equal(t, "/asdf", c.Path())
	expiry, ok := c.Expiry()
	require.True(t, ok)
	assert.True(t, expiry.Equal(date.Truncate(time.Second)))
	assert.True(t, c.IsSecure())
}

func TestFromArgs_MatchesTypedConstructors(t *testing.T) {
	date := futureDate()

	tests := []struct {
		name string
		args []any
		want *Cookie
	}{
		{
			name: "two arguments",
			args: []any{"asdf", "dan"},
			want: MustBuild(Attributes{Name: "asdf", Value: "dan"}),
		},
		{
			name: "three arguments bind path",
			args: []any{"asdf", "dan", "/asdf"},
			want: MustBuild(Attributes{Name: "asdf", Value: "dan", Path: "/asdf"}),
		},
		{
			name: "four arguments",
			args: []any{"asdf", "dan", "/asdf", date},
			want: MustBuild(Attributes{Name: "asdf", Value: "dan", Path: "/asdf", Expiry: &date}),
		},
		{
			name: "four arguments with nil expiry",
			args: []any{"_neg4", "neg4", "/", nil},
			want: MustBuild(Attributes{Name: "_neg4", Value: "neg4"}),
		},
		{
			name: "five arguments bind domain",
			args: []any{"asdf", "dan", "asdf.com", "/asdf", &date},
			want: MustBuild(Attributes{Name: "asdf", Value: "dan", Domain: "asdf.com", Path: "/asdf", Expiry: &date}),
		},
		{
			name: "six arguments",
			args: []any{"asdf", "dan", "asdf.com", "/asdf", date, true},
			want: MustBuild(Attributes{Name: "asdf", Value: "dan", Domain: "asdf.com", Path: "/asdf", Expiry: &date, Secure: true}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromArgs(tt.args...)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestFromArgs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []any
		wantErr error
	}{
		{"too many", []any{"a", "b", "c", "/", nil, true, "extra"}, ErrTooManyArgs},
		{"non-string name", []any{1, "b"}, ErrInvalidArg},
		{"non-time expiry", []any{"a", "b", "/", "tomorrow"}, ErrInvalidArg},
		{"non-bool secure", []any{"a", "b", "x.com", "/", nil, "yes"}, ErrInvalidArg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := FromArgs(tt.args...)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVariantFor(t *testing.T) {
	v, err := VariantFor(3)
	require.NoError(t, err)
	assert.Equal(t, VariantPath, v)
	assert.Equal(t, "(name, value, path)", v.String())

	v, err = VariantFor(5)
	require.NoError(t, err)
	assert.Equal(t, VariantDomain, v)
	assert.Equal(t, 5, v.Arity())
	assert.Equal(t, "(name, value, domain, path, expiry)", v.String())
}

func TestCookie_AttributesAreCopies(t *testing.T) {
	date := futureDate()
	c, err := NewWithExpiry("a", "b", "/", date)
	require.NoError(t, err)

	attrs := c.Attributes()
	*attrs.Expiry = attrs.Expiry.Add(time.Hour)

	expiry, _ := c.Expiry()
	assert.True(t, expiry.Equal(date.Truncate(time.Second)))
}

func TestCookie_IsExpired(t *testing.T) {
	now := time.Now()

	session, _ := New("a", "b")
	assert.False(t, session.IsExpired(now))

	past, _ := NewWithExpiry("a", "b", "/", now.Add(-time.Minute))
	assert.True(t, past.IsExpired(now))

	future, _ := NewWithExpiry("a", "b", "/", now.Add(time.Minute))
	assert.False(t, future.IsExpired(now))
}

func TestCookie_JSON(t *testing.T) {
	expiry := time.Unix(1900000000, 0)
	c, err := NewSecure("sid", "abc", ".example.com", "/app", expiry, true)
	require.NoError(t, err)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"sid","value":"abc","path":"/app","domain":".example.com","expiry":1900000000,"secure":true}`, string(data))

	var decoded Cookie
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, c.Equal(&decoded))
}

func TestCookie_UnmarshalJSON_Validates(t *testing.T) {
	var c Cookie
	err := json.Unmarshal([]byte(`{"name":"sid"}`), &c)
	assert.ErrorIs(t, err, ErrMissingValue)

	err = json.Unmarshal([]byte(`{"value":"x"}`), &c)
	assert.ErrorIs(t, err, ErrMissingName)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"sid","value":""}`), &c))
	assert.Equal(t, "/", c.Path())
}

func TestCookie_HTTPConversion(t *testing.T) {
	expiry := time.Unix(1900000000, 0)
	c, err := NewSecure("sid", "abc", "example.com", "/app", expiry, true)
	require.NoError(t, err)

	hc := c.ToHTTP()
	assert.Equal(t, "sid", hc.Name)
	assert.Equal(t, "example.com", hc.Domain)
	assert.True(t, hc.Expires.Equal(expiry))

	back, err := FromHTTP(hc)
	require.NoError(t, err)
	assert.True(t, c.Equal(back))

	_, err = FromHTTP(&http.Cookie{Value: "x"})
	assert.ErrorIs(t, err, ErrMissingName)
}

func TestCookie_String(t *testing.T) {
	c, err := NewSecure("sid", "abc", "example.com", "/app", time.Unix(0, 0), true)
	require.NoError(t, err)

	s := c.String()
	assert.True(t, strings.HasPrefix(s, "sid=abc; Path=/app; Domain=example.com"))
	assert.True(t, strings.HasSuffix(s, "; Secure"))
}
