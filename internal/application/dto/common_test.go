package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/FarmaStock-api/internal/application/dto"
)

func TestDefaultPage_NormalizaLimites(t *testing.T) {
	cases := []struct {
		nombre     string
		in         dto.PageRequest
		wantLimit  int
		wantOffset int
	}{
		{"vacía toma el límite por defecto", dto.PageRequest{}, dto.DefaultPageLimit, 0},
		{"límite negativo toma el por defecto", dto.PageRequest{Limit: -5}, dto.DefaultPageLimit, 0},
		{"límite mayor al tope se recorta", dto.PageRequest{Limit: 500}, dto.MaxPageLimit, 0},
		{"offset negativo se corrige", dto.PageRequest{Limit: 10, Offset: -3}, 10, 0},
		{"valores válidos se respetan", dto.PageRequest{Limit: 50, Offset: 100}, 50, 100},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			p := tc.in
			p.DefaultPage()
			assert.Equal(t, tc.wantLimit, p.Limit)
			assert.Equal(t, tc.wantOffset, p.Offset)
		})
	}
}
