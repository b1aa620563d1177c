package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neomonitor/internal/model/system"
)

type probe struct {
	Name  string  `json:"name" validate:"required,max=5"`
	Mode  int     `json:"mode" validate:"oneof=1 2"`
	Items []child `json:"items" validate:"omitempty,dive"`
}

type child struct {
	Level int `json:"level" validate:"min=0,max=3"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(probe{Name: "ok", Mode: 1}))

	err := Struct(probe{Mode: 1})
	require.Error(t, err)
	var ve *system.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
	assert.Equal(t, "不能为空", ve.Message)

	err = Struct(probe{Name: "ok", Mode: 1, Items: []child{{Level: 1}, {Level: 9}}})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[1].level", ve.Field)
	assert.True(t, system.IsValidationError(err))
}

func TestDetails(t *testing.T) {
	details := Details(Raw(probe{Name: "toolong", Mode: 3}))
	require.Len(t, details, 2)
	assert.Equal(t, "name", details[0].Field)
	assert.Equal(t, "mode", details[1].Field)

	assert.Nil(t, Details(nil))
}
