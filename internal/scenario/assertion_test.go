package scenario

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract_testing/internal/harness"
)

func TestParseAssertion(t *testing.T) {
	body := `{"id":"2","name":"Cross-Back Training Tank","price":"299.00","category_id":2,"tags":["a"],"z":null,"ok":true,"meta":{"v":1,"k":"x"}}`
	resp := &harness.Response{
		Endpoint:   harness.Endpoint{Method: http.MethodGet, Path: "/product/read_one.php"},
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json; charset=UTF-8"}},
		Body:       []byte(body),
	}

	tests := []struct {
		line string
		want bool
	}{
		{`id notnull`, true},
		{`z notnull`, false},
		{`z exists`, true},
		{`nope exists`, false},
		{`tags nonempty`, true},
		{`id == 2`, true},
		{`category_id == 2`, true},
		{`price == 299`, true},
		{`id == "2"`, true},
		{`category_id == "2"`, false},
		{`name == "Cross-Back Training Tank"`, true},
		{`name == Cross-Back Training Tank`, true},
		{`name != "Other"`, true},
		{`ok == true`, true},
		{`z == null`, true},
		{`meta == {"v":1}`, true},
		{`tags == ["b"]`, false},
		{`price ~ ^\d+\.\d{2}$`, true},
		{`name ~ ^Multi`, false},
		{`price > 298.5`, true},
		{`price >= 299`, true},
		{`category_id < 2`, false},
		{`category_id <= 2`, true},
		{`$ == {"id":"2"}`, true},
		{`header Content-Type == application/json; charset=UTF-8`, true},
		{`header content-type ~ ^application/json`, true},
		{`header X-Missing exists`, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			a, err := parseAssertion(tt.line)
			require.NoError(t, err)
			e := harness.Expect(resp)
			a.apply(e)
			assert.Equal(t, tt.want, len(e.Failures()) == 0, e.Failures())
		})
	}
}

func TestParseAssertionErrors(t *testing.T) {
	for _, line := range []string{
		"",
		"id",
		"id equals 2",
		"records[ notnull",
		"price > cheap",
		"name ~ (",
		"header",
		"header Content-Type",
	} {
		t.Run(line, func(t *testing.T) {
			_, err := parseAssertion(line)
			assert.Error(t, err)
		})
	}
}

func TestCut(t *testing.T) {
	head, rest := cut("  records[0].id   ==  29 ")
	assert.Equal(t, "records[0].id", head)
	assert.Equal(t, "==  29", rest)

	head, rest = cut("notnull")
	assert.Equal(t, "notnull", head)
	assert.Empty(t, rest)
}
