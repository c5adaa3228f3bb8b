package messaging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplates_EmptyPathUsesDefaults(t *testing.T) {
	templates, err := LoadTemplates("")
	require.NoError(t, err)
	assert.Contains(t, templates.PackageNotification, "{resident_name}")
	assert.Contains(t, templates.OptInRequest, "{resident_name}")
}

func TestLoadTemplates_MissingFileFallsBackToDefaults(t *testing.T) {
	templates, err := LoadTemplates("/nonexistent/templates.yml")
	assert.Error(t, err)
	require.NotNil(t, templates)
	assert.Contains(t, templates.PackageNotification, "{context_count}")
}

func TestLoadTemplates_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yml")
	content := "package_notification: \"Oi {resident_name}, {context_count} encomenda(s).\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	templates, err := LoadTemplates(path)
	require.NoError(t, err)
	assert.Equal(t, "Oi {resident_name}, {context_count} encomenda(s).", templates.PackageNotification)
	// Fields absent from the file keep their defaults.
	assert.Contains(t, templates.OptInRequest, "{resident_name}")
}

func TestRender_SubstitutesPlaceholders(t *testing.T) {
	out := Render("Hello {resident_name}, you have {context_count} package(s).", "Maria", 3)
	assert.Equal(t, "Hello Maria, you have 3 package(s).", out)
}

func TestRender_DetailList(t *testing.T) {
	out := Render("{detail_list}", "Maria", 1)
	assert.Equal(t, "1 package(s) awaiting pickup", out)
}
