package player

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateResourceAttachesTrack(t *testing.T) {
	track := goodTrack("Alpha")

	res, err := track.CreateResource()
	require.NoError(t, err)
	assert.Same(t, track, res.Track())
}

func TestCreateResourceWithoutFactory(t *testing.T) {
	track := &Track{Title: "Alpha"}

	res, err := track.CreateResource()
	assert.Nil(t, res)
	assert.Error(t, err)
}

func TestCreateResourceWrapsCause(t *testing.T) {
	cause := errors.New("video unavailable")
	track := &Track{Title: "Alpha"}
	track.NewResource = func(*Track) (Resource, error) { return nil, cause }

	res, err := track.CreateResource()
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "Alpha")
}
