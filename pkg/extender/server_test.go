// Copyright The Renewable Simulator Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package extender

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	extenderv1 "k8s.io/kube-scheduler/extender/v1"

	"github.com/green-k8s/renewable-simulator/pkg/simulator"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	health := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	server := httptest.NewServer(NewServer(New(simulator.DefaultThreshold), "v1.2.3", health))
	t.Cleanup(server.Close)
	return server
}

func post(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	var payload []byte
	switch b := body.(type) {
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_Filter(t *testing.T) {
	server := newTestServer(t)

	resp := post(t, server.URL+"/filter", argsFor(annotatedNode("a", "0.9"), annotatedNode("b", "0.2")))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var result extenderv1.ExtenderFilterResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"a"}, nodeNames(result.Nodes))
	assert.Equal(t, ReasonLowShare, result.FailedNodes["b"])
}

func TestServer_FilterErrors(t *testing.T) {
	server := newTestServer(t)

	t.Run("malformed body", func(t *testing.T) {
		resp := post(t, server.URL+"/filter", "{not json")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var result extenderv1.ExtenderFilterResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Contains(t, result.Error, "failed to decode extender args")
	})

	t.Run("node names only", func(t *testing.T) {
		resp := post(t, server.URL+"/filter", extenderv1.ExtenderArgs{NodeNames: &[]string{"a"}})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result extenderv1.ExtenderFilterResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.NotEmpty(t, result.Error)
	})
}

func TestServer_Prioritize(t *testing.T) {
	server := newTestServer(t)

	resp := post(t, server.URL+"/prioritize", argsFor(annotatedNode("a", "0.6"), annotatedNode("b", "")))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var priorities extenderv1.HostPriorityList
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&priorities))
	assert.Equal(t, extenderv1.HostPriorityList{{Host: "a", Score: 6}, {Host: "b", Score: 0}}, priorities)

	resp = post(t, server.URL+"/prioritize", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_VersionAndHealth(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/version")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", strings.TrimSpace(string(body)))

	healthResp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer healthResp.Body.Close()
	assert.Equal(t, http.StatusOK, healthResp.StatusCode)
}

func TestServer_RejectsWrongMethod(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/filter")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
