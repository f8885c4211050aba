package compose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Fixtures
// =============================================================================

const minimalPod = `
services:
  web:
    image: nginx:latest
`

const railsPod = `
services:
  web:
    build: .
    command: bundle exec rails server
    environment:
      RAILS_ENV: development
      DATABASE_URL: postgres://db/app_development
    ports:
      - "3000:3000"
    volumes:
      - ./log:/usr/src/app/log
    labels:
      io.fdy.cage.lib.coffee_rails: /usr/src/app/vendor/coffee-rails
    depends_on:
      - db

  db:
    image: postgres:9.4
    ports:
      - 5432
`

const podWithMeta = `
x-cage:
  targets:
    - development
    - test
  one_off: true

services:
  migrate:
    image: app:latest
    command: ["rake", "db:migrate"]
`

const podWithNamedVolumes = `
services:
  db:
    image: postgres:9.4
    volumes:
      - pgdata:/var/lib/postgresql/data

volumes:
  pgdata:
`

// =============================================================================
// Parse Tests
// =============================================================================

func TestParse_MinimalPod(t *testing.T) {
	cfg, err := Parse("frontend.yml", []byte(minimalPod))
	require.NoError(t, err)

	assert.Equal(t, "frontend.yml", cfg.Name)
	require.Len(t, cfg.Services, 1)
	assert.Equal(t, "nginx:latest", cfg.Services["web"].Image)
	assert.Nil(t, cfg.Meta)
}

func TestParse_RailsPod(t *testing.T) {
	cfg, err := Parse("rails.yml", []byte(railsPod))
	require.NoError(t, err)

	web := cfg.Services["web"]
	require.NotNil(t, web)
	require.NotNil(t, web.Build)
	assert.Equal(t, ".", web.Build.Context)
	assert.Equal(t, "bundle exec rails server", web.Command.Shell)
	assert.Equal(t, StringList{"3000:3000"}, web.Ports)
	assert.Equal(t, StringList{"./log:/usr/src/app/log"}, web.Volumes)
	assert.Equal(t, "/usr/src/app/vendor/coffee-rails", web.Labels["io.fdy.cage.lib.coffee_rails"])
	assert.Equal(t, StringList{"db"}, web.DependsOn)

	db := cfg.Services["db"]
	require.NotNil(t, db)
	assert.Equal(t, StringList{"5432"}, db.Ports, "numeric ports keep their source spelling")
}

func TestParse_EnvironmentMapKeepsOrder(t *testing.T) {
	cfg, err := Parse("app.yml", []byte(`
services:
  app:
    image: app:1
    environment:
      ZEBRA: "1"
      ALPHA: "2"
      MIDDLE: "3"
`))
	require.NoError(t, err)

	env := cfg.Services["app"].Environment
	require.Len(t, env, 3)
	assert.Equal(t, EnvVar{Key: "ZEBRA", Value: "1"}, env[0])
	assert.Equal(t, EnvVar{Key: "ALPHA", Value: "2"}, env[1])
	assert.Equal(t, EnvVar{Key: "MIDDLE", Value: "3"}, env[2])
}

func TestParse_EnvironmentListForm(t *testing.T) {
	cfg, err := Parse("app.yml", []byte(`
services:
  app:
    image: app:1
    environment:
      - FOO=bar
      - BARE
`))
	require.NoError(t, err)

	env := cfg.Services["app"].Environment
	require.Len(t, env, 2)
	assert.Equal(t, EnvVar{Key: "FOO", Value: "bar"}, env[0])
	assert.Equal(t, EnvVar{Key: "BARE", Value: ""}, env[1])
}

func TestParse_NullEnvironmentValue(t *testing.T) {
	cfg, err := Parse("app.yml", []byte(`
services:
  app:
    image: app:1
    environment:
      EMPTY:
`))
	require.NoError(t, err)

	val, ok := cfg.Services["app"].Environment.Get("EMPTY")
	assert.True(t, ok)
	assert.Equal(t, "", val)
}

func TestParse_CommandForms(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want Command
	}{
		{
			name: "shell form",
			yaml: "services:\n  app:\n    image: a\n    command: rake db:migrate\n",
			want: Command{Shell: "rake db:migrate"},
		},
		{
			name: "exec form",
			yaml: "services:\n  app:\n    image: a\n    command: [rake, \"db:migrate\"]\n",
			want: Command{Exec: []string{"rake", "db:migrate"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse("app.yml", []byte(tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Services["app"].Command)
		})
	}
}

func TestParse_BuildLongForm(t *testing.T) {
	cfg, err := Parse("app.yml", []byte(`
services:
  app:
    build:
      context: https://github.com/faradayio/rails_hello.git
      dockerfile: Dockerfile.dev
`))
	require.NoError(t, err)

	build := cfg.Services["app"].Build
	require.NotNil(t, build)
	assert.Equal(t, "https://github.com/faradayio/rails_hello.git", build.Context)
	assert.Equal(t, "Dockerfile.dev", build.Dockerfile)
}

func TestParse_PodMeta(t *testing.T) {
	cfg, err := Parse("migrate.yml", []byte(podWithMeta))
	require.NoError(t, err)

	require.NotNil(t, cfg.Meta)
	assert.Equal(t, []string{"development", "test"}, cfg.Meta.Targets)
	assert.True(t, cfg.Meta.IsOneOff())
	assert.True(t, cfg.Meta.EnabledIn("development"))
	assert.False(t, cfg.Meta.EnabledIn("production"))
	assert.Equal(t, Command{Exec: []string{"rake", "db:migrate"}}, cfg.Services["migrate"].Command)
}

func TestParse_NoServicesSection(t *testing.T) {
	cfg, err := Parse("empty.yml", []byte("version: \"2\"\n"))
	require.NoError(t, err)

	assert.NotNil(t, cfg.Services)
	assert.Empty(t, cfg.Services)
}

func TestParse_ServiceWithNoBody(t *testing.T) {
	cfg, err := Parse("odd.yml", []byte("services:\n  stub:\n"))
	require.NoError(t, err)

	require.NotNil(t, cfg.Services["stub"])
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse("broken.yml", []byte("services: [whoops\n"))
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "broken.yml", parseErr.File)
	assert.True(t, errors.Is(err, ErrInvalidYAML))
	assert.Contains(t, err.Error(), "broken.yml")
}

func TestParse_EnvironmentWrongShape(t *testing.T) {
	_, err := Parse("bad.yml", []byte("services:\n  app:\n    environment: 12\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotEnvironment))
}

// =============================================================================
// Marshal Tests
// =============================================================================

func TestMarshal_Deterministic(t *testing.T) {
	cfg, err := Parse("rails.yml", []byte(railsPod))
	require.NoError(t, err)

	first, err := Marshal(cfg)
	require.NoError(t, err)
	second, err := Marshal(cfg)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg, err := Parse("rails.yml", []byte(railsPod))
	require.NoError(t, err)

	data, err := Marshal(cfg)
	require.NoError(t, err)

	again, err := Parse("rails.yml", data)
	require.NoError(t, err)

	assert.Equal(t, cfg.Services, again.Services)
}

func TestMarshal_EnvironmentOrderPreserved(t *testing.T) {
	cfg, err := Parse("app.yml", []byte(`
services:
  app:
    image: app:1
    environment:
      ZEBRA: "1"
      ALPHA: "2"
`))
	require.NoError(t, err)

	data, err := Marshal(cfg)
	require.NoError(t, err)

	again, err := Parse("app.yml", data)
	require.NoError(t, err)
	env := again.Services["app"].Environment
	require.Len(t, env, 2)
	assert.Equal(t, "ZEBRA", env[0].Key)
	assert.Equal(t, "ALPHA", env[1].Key)
}

func TestMarshal_PassthroughSectionsSurvive(t *testing.T) {
	cfg, err := Parse("db.yml", []byte(podWithNamedVolumes))
	require.NoError(t, err)

	data, err := Marshal(cfg)
	require.NoError(t, err)

	assert.Contains(t, string(data), "pgdata")

	again, err := Parse("db.yml", data)
	require.NoError(t, err)
	assert.False(t, again.Volumes.IsZero())
}

func TestMarshal_ShortBuildForm(t *testing.T) {
	cfg, err := Parse("app.yml", []byte("services:\n  app:\n    build: ./src\n"))
	require.NoError(t, err)

	data, err := Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "build: ./src")
}
