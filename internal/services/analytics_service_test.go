package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockLabel(t *testing.T) {
	tests := []struct {
		qty  int
		want string
	}{
		{-5, "Out of Stock"},
		{0, "Out of Stock"},
		{1, "Low Stock"},
		{11, "Low Stock"},
		{12, "Limited Stock"},
		{25, "Limited Stock"},
		{26, "In Stock"},
		{500, "In Stock"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StockLabel(tt.qty), "qty=%d", tt.qty)
	}
}
