package compose

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func node(t *testing.T, text string) *yaml.Node {
	t.Helper()
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(text), &n))
	return n.Content[0]
}

func TestDecodeNameList(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantForm  Form
		wantNames []string
	}{
		{"Sequence", "[a, b, a]", FormSequence, []string{"a", "b", "a"}},
		{"Mapping", "{b: {}, a: null}", FormMapping, []string{"b", "a"}},
		{"EmptySequence", "[]", FormSequence, nil},
		{"Null", "~", FormAbsent, nil},
		{"Scalar", "front", FormMalformed, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := decodeNameList(node(t, tt.text))
			assert.Equal(t, tt.wantForm, l.Form)
			assert.Equal(t, tt.wantNames, l.Names)
		})
	}
}

func TestNameListJSON(t *testing.T) {
	tests := []struct {
		name string
		list NameList
		want string
	}{
		{"Absent", NameList{}, "null"},
		{"EmptySequence", NameList{Form: FormSequence}, "[]"},
		{"Sequence", NameList{Form: FormSequence, Names: []string{"a", "b"}}, `["a","b"]`},
		{"Mapping", NameList{Form: FormMapping, Names: []string{"x"}}, `{"form":"mapping","names":["x"]}`},
		{"Malformed", NameList{Form: FormMalformed}, `{"form":"malformed"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.list)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var got NameList
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.list, got)
		})
	}
}

func TestNameListUnmarshalRejects(t *testing.T) {
	for _, text := range []string{`"front"`, `42`, `[1, 2]`, `{"form":"bogus"}`} {
		var l NameList
		assert.Error(t, json.Unmarshal([]byte(text), &l), text)
	}
}

func TestServiceSpecJSONRoundTrip(t *testing.T) {
	doc, err := Load(`
services:
  web:
    image: nginx
    ports: ["0.0.0.0:8080:80", 9000, {published: 8443, target: 443}, [1]]
    volumes: ["data:/d", {type: bind, source: ./src, target: /src, read_only: true}, 42]
    networks: [front]
    depends_on:
      api: {condition: service_started}
  api:
    image: api
    networks: 7
`)
	require.NoError(t, err)

	for _, svc := range doc.Services {
		data, err := json.Marshal(svc.Spec)
		require.NoError(t, err)
		var got ServiceSpec
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, svc.Spec, got, svc.Name)
	}
}

func TestPortBinding(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantKind      PortKind
		wantPublished string
		wantHost      string
		wantHostOK    bool
	}{
		{"HostAndContainer", `"8080:80"`, PortLiteral, "8080", "8080", true},
		{"ContainerOnlyString", `"3000"`, PortLiteral, "3000", "", false},
		{"AllInterfaces", `"0.0.0.0:80:80"`, PortLiteral, "0.0.0.0", "0.0.0.0", true},
		{"Structured", "{published: 8080, target: 90}", PortStructured, "8080", "", false},
		{"StructuredHex", "{published: 0x1F90, target: 90}", PortStructured, "8080", "", false},
		{"StructuredStringPublished", `{published: "9000", target: 90}`, PortStructured, "9000", "", false},
		{"StructuredNoPublished", "{target: 90}", PortStructured, "", "", false},
		{"StructuredZeroPublished", "{published: 0, target: 90}", PortStructured, "", "", false},
		{"Number", "8080", PortNumber, "", "", false},
		{"Malformed", "[1, 2]", PortMalformed, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := decodePort(node(t, tt.text))
			assert.Equal(t, tt.wantKind, p.Kind)

			published, ok := p.PublishedPort()
			assert.Equal(t, tt.wantPublished, published)
			assert.Equal(t, tt.wantPublished != "", ok)

			host, ok := p.HostAddress()
			assert.Equal(t, tt.wantHostOK, ok)
			assert.Equal(t, tt.wantHost, host)
		})
	}
}

func TestMountVolumeName(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantName string
	}{
		{"Named", `"dbdata:/var/data"`, "dbdata"},
		{"RelativeBind", `"./data:/var/data"`, ""},
		{"ParentBind", `"../data:/var/data"`, ""},
		{"AbsoluteBind", `"/srv/data:/var/data"`, ""},
		{"AnonymousContainerPath", `"/var/data"`, ""},
		{"BareName", `"cache"`, "cache"},
		{"Empty", `""`, ""},
		{"StructuredVolume", "{type: volume, source: data, target: /data}", "data"},
		{"StructuredUntyped", "{source: data, target: /data}", "data"},
		{"StructuredBindName", "{type: bind, source: data, target: /data}", "data"},
		{"StructuredRelative", "{source: ./data, target: /data}", "./data"},
		{"StructuredTmpfs", "{type: tmpfs, target: /tmp}", ""},
		{"Malformed", "42", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decodeMount(node(t, tt.text))
			name, ok := m.VolumeName()
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantName != "", ok)
		})
	}
}

func TestDecodeBuild(t *testing.T) {
	assert.Nil(t, decodeBuild(node(t, `""`)))
	assert.Nil(t, decodeBuild(node(t, "~")))
	assert.Equal(t, &Build{Context: "."}, decodeBuild(node(t, ".")))
	assert.Equal(t, &Build{Context: "app", Dockerfile: "Dockerfile.dev"},
		decodeBuild(node(t, "{context: app, dockerfile: Dockerfile.dev}")))
}

func TestDecodeCommand(t *testing.T) {
	assert.Equal(t, []string{"npm start"}, decodeCommand(node(t, "npm start")))
	assert.Equal(t, []string{"npm", "start"}, decodeCommand(node(t, "[npm, start]")))
	assert.Nil(t, decodeCommand(node(t, "~")))
}
