//go:build unit

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	constant "github.com/LerianStudio/lib-facemesh/facemesh/constants"
	"github.com/LerianStudio/lib-facemesh/facemesh/digest"
	"github.com/LerianStudio/lib-facemesh/facemesh/mesh"
	nethttp "github.com/LerianStudio/lib-facemesh/facemesh/net/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleDigest = "9bfb55a8406617ff3e6767ec5d27fc6b5682c3a79c415ef6e084bf7d050273e6"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func TestDigestCmd(t *testing.T) {
	out, _, err := execute(t, "digest", "example_string")
	require.NoError(t, err)
	assert.Equal(t, exampleDigest+"\n", out)

	out, _, err = execute(t, "digest", "", "--algorithm", "blake3")
	require.NoError(t, err)
	assert.Equal(t, digest.BLAKE3.Sum("")+"\n", out)

	_, _, err = execute(t, "digest", "x", "--algorithm", "md5")
	assert.ErrorIs(t, err, digest.ErrUnknownAlgorithm)
}

func TestDigestCmd_DefaultInput(t *testing.T) {
	t.Setenv("DEFAULT_INPUT_STRING", "")

	out, _, err := execute(t, "digest")
	require.NoError(t, err)
	assert.Equal(t, exampleDigest+"\n", out)
}

func TestGenerateCmd_JSON(t *testing.T) {
	out, _, err := execute(t, "generate", "example_string")
	require.NoError(t, err)

	var m mesh.Mesh
	require.NoError(t, json.Unmarshal([]byte(out), &m))

	want, _, err := mesh.Generate("example_string", digest.SHA256)
	require.NoError(t, err)
	assert.Equal(t, want, m)
}

func TestGenerateCmd_OBJToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face.obj")

	out, errOut, err := execute(t, "generate", "example_string", "--format", "obj", "--output", path)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, exampleDigest)
	assert.Contains(t, errOut, "model/obj")
	assert.Contains(t, errOut, "bounds [-2 -1.733 0]..[1.733 2 2.667]")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 24)
	assert.Equal(t, "v -2 2 2", lines[2])
}

func TestGenerateCmd_STL(t *testing.T) {
	out, _, err := execute(t, "generate", "", "-f", "stl")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "solid facemesh"))
	assert.Equal(t, 14, strings.Count(out, "endfacet"))
}

func TestGenerateCmd_Errors(t *testing.T) {
	_, _, err := execute(t, "generate", "x", "--format", "ply")
	assert.ErrorIs(t, err, mesh.ErrUnsupportedFormat)

	_, _, err = execute(t, "generate", "x", "--algorithm", "crc32")
	assert.ErrorIs(t, err, digest.ErrUnknownAlgorithm)

	_, _, err = execute(t, "generate", "a", "b")
	assert.Error(t, err)
}

func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	return port
}

func TestRunServe_ServesAndShutsDown(t *testing.T) {
	cfg := defaultConfig()
	cfg.ServerHost = "127.0.0.1"
	cfg.ServerPort = freePort(t)
	cfg.ShutdownTimeout = 5 * time.Second

	shutdown := make(chan struct{})
	done := make(chan error, 1)

	go func() { done <- runServe(context.Background(), cfg, shutdown) }()

	client := &http.Client{Timeout: time.Second}
	defer client.CloseIdleConnections()

	url := fmt.Sprintf("http://%s/generate_3d_face", cfg.Address())

	var resp *http.Response

	require.Eventually(t, func() bool {
		r, err := client.Get(url)
		if err != nil {
			return false
		}

		resp = r

		return true
	}, 5*time.Second, 20*time.Millisecond)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, exampleDigest, resp.Header.Get(constant.HeaderFaceDigest))

	close(shutdown)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("runServe did not return")
	}
}

func TestRunServe_InvalidConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.ServerPort = 0

	assert.ErrorIs(t, runServe(context.Background(), cfg, nil), ErrInvalidConfig)

	cfg = defaultConfig()
	cfg.EnvName = "moon"

	assert.ErrorIs(t, runServe(context.Background(), cfg, nil), nethttp.ErrFieldOneOf)
}
