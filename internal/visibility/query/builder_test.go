package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_WithCategoryHint(t *testing.T) {
	queries := Build("Acme Corp", "running shoes")

	assert.Equal(t, []string{
		"What are the best running shoes products to buy?",
		"Which online stores sell good running shoes?",
		"Top rated running shoes brands",
		"What do you know about Acme Corp?",
		"Is Acme Corp a good brand to buy from?",
		"Acme Corp reviews and alternatives",
	}, queries)
}

func TestBuild_WithoutCategoryHint(t *testing.T) {
	queries := Build("Acme Corp", "  ")

	assert.Equal(t, []string{
		"What do you know about Acme Corp?",
		"Is Acme Corp a good brand to buy from?",
		"Acme Corp reviews and alternatives",
	}, queries)
}

func TestBuild_Deterministic(t *testing.T) {
	assert.Equal(t, Build("Acme", "shoes"), Build("Acme", "shoes"))
}
