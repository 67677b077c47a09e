package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	src := t.TempDir()
	root := filepath.Join(src, "oci_env")

	cfg, err := Load(root, filepath.Join(root, FileName))
	require.NoError(t, err)
	require.Equal(t, src, cfg.SrcDir)
	require.Equal(t, "podman", cfg.ComposeBinary)
	require.Equal(t, "oci_env", cfg.ComposeProjectName)
	require.Equal(t, "5001", cfg.APIPort)
	require.Empty(t, cfg.Projects())
}

func TestLoadParsesEnvFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, FileName)
	content := "COMPOSE_BINARY=Docker\n" +
		"DEV_SOURCE_PATH=pulpcore:pulp_file::pulp_rpm\n" +
		"SRC_DIR=/src\n" +
		"COMPOSE_PROFILE=galaxy_ng/base:ui\n" +
		"# comment\n" +
		"DJANGO_SUPERUSER_PASSWORD=secret\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(root, path)
	require.NoError(t, err)
	require.Equal(t, "docker", cfg.ComposeBinary)
	require.Equal(t, "/src", cfg.SrcDir)
	require.Equal(t, []string{"pulpcore", "pulp_file", "pulp_rpm"}, cfg.Projects())
	require.Equal(t, []string{"galaxy_ng/base", "ui"}, cfg.Profiles())
	require.Equal(t, "secret", cfg.Extra["DJANGO_SUPERUSER_PASSWORD"])
	require.Contains(t, cfg.Environ(), "DJANGO_SUPERUSER_PASSWORD=secret")
	require.Contains(t, cfg.Environ(), "SRC_DIR=/src")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
	}{
		{name: "binary", content: "COMPOSE_BINARY=nerdctl\n", want: ErrInvalidBinary},
		{name: "port", content: "API_PORT=http\n", want: ErrInvalidPort},
		{name: "port range", content: "API_PORT=70000\n", want: ErrInvalidPort},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			path := filepath.Join(root, FileName)
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			_, err := Load(root, path)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestStatusURL(t *testing.T) {
	cfg := Default("/src/oci_env")
	require.Equal(t, "http://localhost:5001/pulp/api/v3/status/", cfg.StatusURL(""))
	require.Equal(t, "http://localhost:5001/api/galaxy/pulp/api/v3/status/", cfg.StatusURL("api/galaxy/pulp"))
}
