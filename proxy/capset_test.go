package proxy_test

import (
	"reflect"
	"testing"

	"github.com/on-the-ground/scopeguard/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilitiesOf_Rejections(t *testing.T) {
	_, err := proxy.CapabilitiesOf(nil)
	assert.ErrorIs(t, err, proxy.ErrNilValue)

	var w *widget
	_, err = proxy.CapabilitiesOf(w)
	assert.ErrorIs(t, err, proxy.ErrNilValue)

	_, err = proxy.CapabilitiesOf(42)
	assert.ErrorIs(t, err, proxy.ErrNotStructured)

	_, err = proxy.CapabilitiesOf("not an object")
	assert.ErrorIs(t, err, proxy.ErrNotStructured)
}

func TestCapabilitySet_CanDoAndOps(t *testing.T) {
	caps, err := proxy.CapabilitiesOf(&widget{})
	require.NoError(t, err)

	assert.True(t, caps.CanDo("Cleanup"))
	assert.True(t, caps.CanDo("Add"))
	assert.False(t, caps.CanDo("Frobnicate"))

	ops := caps.Ops()
	assert.Contains(t, ops, "Cleanup")
	assert.Contains(t, ops, "Add")
	assert.IsIncreasing(t, ops)
}

func TestCapabilitySet_Invoke(t *testing.T) {
	w := &widget{name: "w"}
	caps, err := proxy.CapabilitiesOf(w)
	require.NoError(t, err)

	out, err := caps.Invoke("Add", 2, 3)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 5, out[0])

	// mutations land on the bound value, not a copy
	_, err = caps.Invoke("Rename", "renamed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", w.Name())
}

func TestCapabilitySet_InvokeMissingOp(t *testing.T) {
	caps, err := proxy.CapabilitiesOf(&widget{})
	require.NoError(t, err)

	_, err = caps.Invoke("Frobnicate")
	require.ErrorIs(t, err, proxy.ErrNoSuchOperation)
	assert.Contains(t, err.Error(), `"Frobnicate"`)
	assert.Contains(t, err.Error(), "*proxy_test.widget")
}

func TestCapabilitySet_InvokeArity(t *testing.T) {
	caps, err := proxy.CapabilitiesOf(&widget{})
	require.NoError(t, err)

	_, err = caps.Invoke("Add", 1)
	assert.ErrorIs(t, err, proxy.ErrBadArity)

	// variadic: any count from zero up
	out, err := caps.Invoke("Sum")
	require.NoError(t, err)
	assert.Equal(t, 0, out[0])

	out, err = caps.Invoke("Sum", 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 6, out[0])

	_, err = caps.Invoke("Add", 1, "two")
	assert.ErrorIs(t, err, proxy.ErrBadArgument)
}

func TestCapabilitySet_InvokeNilArg(t *testing.T) {
	caps, err := proxy.CapabilitiesOf(&widget{})
	require.NoError(t, err)

	out, err := caps.Invoke("SamePeer", nil)
	require.NoError(t, err)
	assert.Equal(t, true, out[0])
}

func TestCapabilitySet_IsA(t *testing.T) {
	caps, err := proxy.CapabilitiesOf(&widget{})
	require.NoError(t, err)

	cleanerT := reflect.TypeOf((*cleaner)(nil)).Elem()
	assert.True(t, caps.IsA(cleanerT))
	assert.True(t, caps.IsA(reflect.TypeOf(&widget{})))
	assert.False(t, caps.IsA(reflect.TypeOf(&bare{})))
	assert.False(t, caps.IsA(nil))
}

func TestCapabilitySet_Fingerprint(t *testing.T) {
	capsA, err := proxy.CapabilitiesOf(&widget{name: "a"})
	require.NoError(t, err)
	capsB, err := proxy.CapabilitiesOf(&widget{name: "b"})
	require.NoError(t, err)

	assert.Equal(t, capsA.Fingerprint(), capsB.Fingerprint(),
		"same type must produce the same fingerprint")

	capsOther, err := proxy.CapabilitiesOf(&bare{})
	require.NoError(t, err)
	assert.NotEqual(t, capsA.Fingerprint(), capsOther.Fingerprint())
}
