/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package phonetic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnglishEncode(t *testing.T) {
	assert.Equal(t, "R901096", English{}.Encode("Robert"))
	assert.Equal(t, "", English{}.Encode("123"))
}

func TestGermanEncodeBasic(t *testing.T) {
	got := German{}.Encode("Müller")
	assert.NotEmpty(t, got)
	assert.Equal(t, "", German{}.Encode(""))
}

func TestFrenchEncodeBasic(t *testing.T) {
	got := French{}.Encode("Dupont")
	assert.NotEmpty(t, got)
}

func TestSpanishEncodeBasic(t *testing.T) {
	got := Spanish{}.Encode("Vaca")
	assert.NotEmpty(t, got)
	assert.Equal(t, byte('B'), got[0], "leading V normalises to B before coding")
}

func TestEncoderInterface(t *testing.T) {
	var encoders = []Encoder{English{}, French{}, German{}, Spanish{}}
	for _, e := range encoders {
		assert.NotEmpty(t, e.Name())
		assert.NotEmpty(t, e.Description())
	}
}
