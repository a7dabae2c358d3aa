package enum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	type Kind string

	purchase := New(Kind("purchase"))
	bonus := New(Kind("bonus"))
	New(Kind("bonus"))

	v, err := ToEnum[Kind]("purchase")
	require.NoError(t, err)
	require.Equal(t, purchase, v)

	_, err = ToEnum[Kind]("refund")
	require.Error(t, err)

	require.Equal(t, []Kind{purchase, bonus}, Values[Kind]())
}

func TestToEnum_UnknownType(t *testing.T) {
	type Other string

	_, err := ToEnum[Other]("x")
	require.Error(t, err)
	require.Nil(t, Values[Other]())
}
