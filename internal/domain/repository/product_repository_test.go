package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductUpdateEmpty(t *testing.T) {
	assert.True(t, ProductUpdate{}.Empty())

	name := "Shoe"
	assert.False(t, ProductUpdate{Name: &name}.Empty())

	key := "product_images/65f000000000000000000001"
	assert.False(t, ProductUpdate{PhotoKey: &key}.Empty())
}
