package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountFailed(t *testing.T) {
	results := []TestResult{{Success: true}, {Success: false}, {Success: false}}
	assert.Equal(t, 2, CountFailed(results))
	assert.Zero(t, CountFailed(nil))
}

func TestLastExchange(t *testing.T) {
	assert.Equal(t, Exchange{}, TestResult{}.LastExchange())

	r := TestResult{Exchanges: []Exchange{{Path: "/product/create.php"}, {Path: "/product/read.php"}}}
	assert.Equal(t, "/product/read.php", r.LastExchange().Path)
}
