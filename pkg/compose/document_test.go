package compose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `version: "3.8"
services:
  web:
    image: nginx:alpine
    ports:
      - "80:80"
      - published: 8443
        target: 443
    networks: [front]
    depends_on:
      api:
        condition: service_healthy
  api:
    build: ./api
    networks:
      front: {}
      back:
    environment:
      DEBUG: "1"
      TOKEN:
    volumes:
      - ./src:/app
      - cache:/tmp/cache:ro
      - type: volume
        source: data
        target: /data
networks:
  front:
    driver: bridge
  back:
    external: true
volumes:
  data: {}
`

func TestLoad(t *testing.T) {
	doc, err := Load(sample)
	require.NoError(t, err)

	assert.Equal(t, "3.8", doc.Version)
	require.Len(t, doc.Services, 2)
	assert.Equal(t, "web", doc.Services[0].Name)
	assert.Equal(t, "api", doc.Services[1].Name)
	assert.Equal(t, 3, doc.Services[0].Line)

	web := doc.Services[0].Spec
	assert.Equal(t, "nginx:alpine", web.Image)
	assert.Equal(t, FormSequence, web.Networks.Form)
	assert.Equal(t, []string{"front"}, web.Networks.Names)
	assert.Equal(t, FormMapping, web.DependsOn.Form)
	assert.Equal(t, []string{"api"}, web.DependsOn.Names)
	require.Len(t, web.Ports, 2)
	assert.Equal(t, PortLiteral, web.Ports[0].Kind)
	assert.Equal(t, PortStructured, web.Ports[1].Kind)
	assert.Equal(t, "8443", web.Ports[1].Published)

	api := doc.Services[1].Spec
	require.NotNil(t, api.Build)
	assert.Equal(t, "./api", api.Build.Context)
	assert.Equal(t, []string{"front", "back"}, api.Networks.Names)
	assert.Equal(t, []string{"DEBUG=1", "TOKEN"}, api.Environment)
	require.Len(t, api.Volumes, 3)
	assert.Equal(t, "cache", api.Volumes[1].Source)
	assert.Equal(t, "ro", api.Volumes[1].Mode)
	assert.True(t, api.Volumes[2].Structured)

	require.Len(t, doc.Networks, 2)
	assert.Equal(t, "bridge", doc.Networks[0].Spec.Driver)
	assert.True(t, doc.Networks[1].Spec.External)
	assert.True(t, doc.HasNetwork("back"))
	assert.False(t, doc.HasNetwork("default"))
	assert.True(t, doc.HasVolume("data"))
	assert.True(t, doc.HasService("api"))

	svc, ok := doc.Service("web")
	require.True(t, ok)
	assert.Equal(t, "web", svc.Name)
}

func TestLoadNotMapping(t *testing.T) {
	for _, text := range []string{"", "# only a comment\n", "~", "---\n"} {
		_, err := Load(text)
		assert.ErrorIs(t, err, ErrEmpty, "text %q", text)
		assert.ErrorIs(t, err, ErrNotMapping, "text %q", text)
	}
	for _, text := range []string{"- a\n- b\n", "just a string", "42"} {
		_, err := Load(text)
		assert.ErrorIs(t, err, ErrNotMapping, "text %q", text)
		assert.NotErrorIs(t, err, ErrEmpty, "text %q", text)
	}
}

func TestLoadSyntaxError(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLine int
	}{
		{"NestedMappingValue", "services:\n  web: image: nginx\n", 2},
		{"UnclosedQuote", "services:\n  web:\n    image: \"nginx\n", 0},
		{"DuplicateService", "services:\n  web: {}\n  web: {}\n", 3},
		{"DuplicateNestedKey", "services:\n  web:\n    image: a\n    image: b\n", 4},
		{"MultipleDocuments", "services: {}\n---\nservices: {}\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.text)
			var se *SyntaxError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.NotEmpty(t, se.Msg)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, se.Line)
			}
		})
	}
}

func TestLoadNullSections(t *testing.T) {
	doc, err := Load("services:\nnetworks:\nvolumes:\n")
	require.NoError(t, err)
	assert.Empty(t, doc.Services)
	assert.Empty(t, doc.Networks)
	assert.Empty(t, doc.Volumes)
}

func TestLoadNullService(t *testing.T) {
	doc, err := Load("services:\n  empty:\n  scalar: 3\n")
	require.NoError(t, err)
	require.Len(t, doc.Services, 2)
	assert.False(t, doc.Services[0].Spec.HasSource())
	assert.False(t, doc.Services[1].Spec.Networks.Present())
}

func TestLoadMergeKeys(t *testing.T) {
	text := `x-base: &base
  image: busybox
  privileged: true
  user: root
services:
  a:
    <<: *base
    user: app
  b: *base
`
	doc, err := Load(text)
	require.NoError(t, err)
	require.Len(t, doc.Services, 2)

	a := doc.Services[0].Spec
	assert.Equal(t, "busybox", a.Image)
	assert.True(t, a.Privileged)
	assert.Equal(t, "app", a.User)

	b := doc.Services[1].Spec
	assert.Equal(t, "busybox", b.Image)
	assert.Equal(t, "root", b.User)
}

func TestLoadScalarQuirks(t *testing.T) {
	text := `services:
  a:
    image: ""
    privileged: "true"
    user: 0
    healthcheck:
  b:
    build: {}
    privileged: yes
`
	doc, err := Load(text)
	require.NoError(t, err)

	a := doc.Services[0].Spec
	assert.False(t, a.HasSource(), "empty image is absent")
	assert.False(t, a.Privileged, "string true is not boolean true")
	assert.Equal(t, "0", a.User)
	assert.True(t, a.HasHealthcheck, "a null healthcheck still counts as present")

	b := doc.Services[1].Spec
	assert.True(t, b.HasSource())
	assert.False(t, b.Privileged, "yes is a string in YAML 1.2")
}
