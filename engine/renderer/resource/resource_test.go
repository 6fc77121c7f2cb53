package resource

import (
	"testing"

	"github.com/Carmen-Shannon/hexa/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCapacity(t *testing.T) {
	assert.NoError(t, CheckCapacity("hex", 0, DefaultCapacity))
	assert.NoError(t, CheckCapacity("hex", 250, DefaultCapacity))

	err := CheckCapacity("hex", 251, DefaultCapacity)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	var capErr *CapacityError
	if assert.ErrorAs(t, err, &capErr) {
		assert.Equal(t, uint32(251), capErr.Requested)
		assert.Equal(t, uint32(250), capErr.Capacity)
		assert.Equal(t, "hex: 251 instances requested, capacity is 250", capErr.Error())
	}
}

func TestUploadInstances_RejectsBeforeRecording(t *testing.T) {
	m := &manager{label: "sprite", capacity: 2, stride: 48, instances: &binding{name: "instances"}, instanceCount: 1}

	// a nil encoder proves nothing was recorded
	err := m.UploadInstances(nil, make([]byte, 3*48), 3)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, uint32(1), m.InstanceCount())

	err = m.UploadInstances(nil, make([]byte, 10), 1)
	assert.ErrorContains(t, err, "not 1 records of 48 bytes")

	assert.NoError(t, m.UploadInstances(nil, nil, 0))
	assert.Equal(t, uint32(1), m.InstanceCount(), "not live before the frame is submitted")
	m.FinishFrame(true)
	assert.Equal(t, uint32(0), m.InstanceCount())
}

func TestFinishFrame_DiscardsUnsubmittedUpload(t *testing.T) {
	m := &manager{label: "hex", capacity: 4, stride: 80, instances: &binding{name: "instances"}, instanceCount: 2}

	require.NoError(t, m.UploadInstances(nil, nil, 0))
	m.FinishFrame(false)
	assert.Equal(t, uint32(2), m.InstanceCount(), "a failed submit keeps the previous set")
	assert.False(t, m.hasPending)

	m.FinishFrame(true)
	assert.Equal(t, uint32(2), m.InstanceCount(), "nothing pending, nothing committed")
}

func TestManager_MissingBindings(t *testing.T) {
	m := &manager{label: "post"}
	assert.Equal(t, uint32(0), m.Capacity())
	assert.ErrorContains(t, m.UploadUniform(nil, []byte{1}), "no uniform binding")
	assert.ErrorContains(t, m.UploadInstances(nil, nil, 0), "no instance binding")
	assert.ErrorContains(t, m.SetTexture(nil), "no texture binding")
}

func TestSamplerDescriptor_Defaults(t *testing.T) {
	d := SamplerDescriptor("post", common.SamplerStagingData{MinFilter: wgpu.FilterModeNearest})
	assert.Equal(t, "post", d.Label)
	assert.Equal(t, wgpu.AddressModeClampToEdge, d.AddressModeU)
	assert.Equal(t, wgpu.FilterModeLinear, d.MagFilter)
	assert.Equal(t, wgpu.FilterModeNearest, d.MinFilter)
	assert.Equal(t, float32(32), d.LodMaxClamp)
	assert.Equal(t, uint16(1), d.MaxAnisotropy)
}
