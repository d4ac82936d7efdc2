package cloudinary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURI(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,iVBORw==", DataURI("image/png", []byte{0x89, 'P', 'N', 'G'}))
}

func TestSplitPath(t *testing.T) {
	folder, id := splitPath("civicguard", "reports/1700000000000-drain.jpg")
	assert.Equal(t, "civicguard/reports", folder)
	assert.Equal(t, "1700000000000-drain", id)

	folder, id = splitPath("civicguard", "flat.png")
	assert.Equal(t, "civicguard", folder)
	assert.Equal(t, "flat", id)
}

func TestNewService(t *testing.T) {
	_, err := NewService("", "key", "secret", "")
	assert.Error(t, err)

	svc, err := NewService("demo", "key", "secret", "")
	require.NoError(t, err)
	assert.Equal(t, "civicguard", svc.uploadFolder)
}
