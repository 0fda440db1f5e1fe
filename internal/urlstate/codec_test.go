package urlstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchemas() []Schema {
	dims := []Dimension{
		String("search", ""),
		Bool("inStock", false),
		Bool("isActive", true),
		Enum("status", "", "PENDING", "PAID", "FAILED"),
		Date("startDate"),
		Int("page", 1, 1, 0),
	}
	return []Schema{
		NewSchema("omit", OmitDefaults, dims...),
		NewSchema("all", IncludeAll, dims...),
	}
}

func TestDecodeEncodeDecodeIsIdempotent(t *testing.T) {
	raws := []string{
		"",
		"search=widget",
		"search=&inStock=true&isActive=false",
		"inStock=TRUE&isActive=FALSE",
		"status=PENDING&startDate=2024-02-30",
		"status=pending&startDate=2024-02-03&page=3",
		"page=-4&page=2&unknown=1",
		"search=a%20b%26c&isActive=yes",
		"startDate=03/02/2024&page=abc",
	}
	for _, schema := range testSchemas() {
		for _, raw := range raws {
			first := Decode(ParseQuery(raw), schema)
			second := Decode(Encode(first, schema), schema)
			assert.True(t, Equal(first, second), "schema=%s raw=%q first=%v second=%v", schema.Name, raw, first, second)
		}
	}
}

func TestDecodeFillsEveryDimension(t *testing.T) {
	schema := testSchemas()[0]
	got := Decode(nil, schema)
	assert.Equal(t, FilterSet{
		"search":    "",
		"inStock":   false,
		"isActive":  true,
		"status":    "",
		"startDate": "",
		"page":      1,
	}, got)
}

func TestBooleanDecodingAsymmetry(t *testing.T) {
	schema := testSchemas()[0]

	cases := []struct {
		raw      string
		inStock  bool
		isActive bool
	}{
		{raw: "inStock=true", inStock: true, isActive: true},
		{raw: "inStock=TRUE", inStock: false, isActive: true},
		{raw: "inStock=1", inStock: false, isActive: true},
		{raw: "isActive=false", inStock: false, isActive: false},
		{raw: "isActive=FALSE", inStock: false, isActive: true},
		{raw: "isActive=0", inStock: false, isActive: true},
		{raw: "isActive=", inStock: false, isActive: true},
	}
	for _, tc := range cases {
		got := Decode(ParseQuery(tc.raw), schema)
		assert.Equal(t, tc.inStock, got.Bool("inStock"), tc.raw)
		assert.Equal(t, tc.isActive, got.Bool("isActive"), tc.raw)
	}
}

func TestUnparsableValuesFallBackToDefault(t *testing.T) {
	schema := testSchemas()[0]
	got := Decode(ParseQuery("status=SHIPPED&startDate=2024-13-01&page=0"), schema)
	assert.Equal(t, "", got.String("status"))
	assert.Equal(t, "", got.String("startDate"))
	assert.Equal(t, 1, got.Int("page"))

	got = Decode(ParseQuery("status=PAID&startDate=2024-01-05&page=7"), schema)
	assert.Equal(t, "PAID", got.String("status"))
	assert.Equal(t, "2024-01-05", got.String("startDate"))
	assert.Equal(t, 7, got.Int("page"))
	day, ok := got.Date("startDate")
	require.True(t, ok)
	assert.Equal(t, 5, day.Day())
}

func TestEncodePolicy(t *testing.T) {
	schemas := testSchemas()
	filters := FilterSet{"search": "widget", "isActive": true, "page": 1}

	omit := Encode(filters, schemas[0])
	assert.Equal(t, "search=widget", omit.String())

	all := Encode(filters, schemas[1])
	assert.Equal(t, "search=widget&inStock=false&isActive=true&status=&startDate=&page=1", all.String())
}

func TestEncodeCoercesLooseValues(t *testing.T) {
	schema := testSchemas()[0]
	filters := FilterSet{"inStock": "true", "isActive": "nope", "page": "3", "status": 42}
	got := Encode(filters, schema)
	assert.Equal(t, "inStock=true&page=3", got.String())
}

func TestKeyIsOrderInsensitive(t *testing.T) {
	schema := testSchemas()[0]
	a := Decode(ParseQuery("search=wid&status=PAID"), schema)
	b := Decode(ParseQuery("status=PAID&search=wid&isActive=true"), schema)
	assert.Equal(t, Key(a, schema), Key(b, schema))
	assert.True(t, Equal(a, b))

	c := Decode(ParseQuery("status=PAID&search=widget"), schema)
	assert.NotEqual(t, Key(a, schema), Key(c, schema))
	assert.False(t, Equal(a, c))
}

func TestParseQueryFirstValueWins(t *testing.T) {
	q := ParseQuery("?a=1&b=2&a=3&=x&c")
	assert.Equal(t, []string{"a", "b", "c"}, q.Keys())
	v, _ := q.Get("a")
	assert.Equal(t, "1", v)
	v, ok := q.Get("c")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}
