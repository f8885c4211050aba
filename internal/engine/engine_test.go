package engine

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faradayio/cage-sub000/internal/core/compose"
	"github.com/faradayio/cage-sub000/internal/core/project"
	"github.com/faradayio/cage-sub000/internal/core/source"
	"github.com/faradayio/cage-sub000/internal/shell/store"
)

// =============================================================================
// Test Fixtures
// =============================================================================

const frontendPodFile = `
services:
  web:
    build: https://github.com/faradayio/rails_hello.git#release
    environment:
      RAILS_ENV: development
    ports:
      - "3000:3000"
    volumes:
      - ./log:/usr/src/app/log
    labels:
      io.fdy.cage.lib.coffee_rails: /usr/src/app/vendor/coffee-rails
  assets:
    image: node:20-alpine
`

const dbPodFile = `
services:
  db:
    image: postgres:16
`

const migratePodFile = `
services:
  migrate:
    image: busybox:1.36
x-cage:
  one_off: true
`

const metricsPodFile = `
services:
  metrics:
    image: prom/prometheus:v2.53.0
x-cage:
  targets:
    - production
`

const frontendProdOverride = `
services:
  web:
    environment:
      RAILS_ENV: production
`

const sourcesFile = `
libs:
  coffee_rails:
    context: https://github.com/rails/coffee-rails.git#4.1.x
`

const secretsFile = `
common:
  web:
    DB_PASSWORD: hunter2
`

const mountedFile = `
coffee-rails_4.1.x: true
`

func writeProject(t *testing.T) *store.Store {
	t.Helper()
	layout := store.DefaultLayout(t.TempDir())
	files := map[string]string{
		layout.PodFile("frontend"):                    frontendPodFile,
		layout.PodFile("db"):                          dbPodFile,
		layout.PodFile("migrate"):                     migratePodFile,
		layout.PodFile("metrics"):                     metricsPodFile,
		layout.OverrideFile("production", "frontend"): frontendProdOverride,
		layout.SourcesFile():                          sourcesFile,
		layout.SecretsFile():                          secretsFile,
		layout.MountStateFile():                       mountedFile,
	}
	for path, content := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return store.New(layout)
}

// fakeCompose builds a stand-in compose binary that records its arguments,
// one invocation per line.
func fakeCompose(t *testing.T) (bin, logFile string) {
	t.Helper()
	dir := t.TempDir()
	logFile = filepath.Join(dir, "calls.log")
	bin = filepath.Join(dir, "compose")
	script := "#!/bin/sh\necho \"$@\" >> " + logFile + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin, logFile
}

func composeCalls(t *testing.T, logFile string) []string {
	t.Helper()
	data, err := os.ReadFile(logFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func newTestEngine(t *testing.T, st *store.Store, composeBin string) *Engine {
	t.Helper()
	eng, err := New(st, nil, Options{
		ProjectName:   "hello",
		DefaultTarget: "development",
		ComposeBin:    composeBin,
		HomeDir:       "/home/dev",
		Logger:        discardLogger(),
	})
	require.NoError(t, err)
	return eng
}

func devTarget(t *testing.T, eng *Engine) project.Target {
	t.Helper()
	target, err := eng.Target("")
	require.NoError(t, err)
	return target
}

func readOutput(t *testing.T, eng *Engine, target, pod string) *compose.Config {
	t.Helper()
	path := eng.store.Layout.OutputFile(target, pod)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg, err := compose.Parse(pod+".yml", data)
	require.NoError(t, err)
	return cfg
}

// =============================================================================
// Loading Tests
// =============================================================================

func TestEngine_New_LoadsProject(t *testing.T) {
	eng := newTestEngine(t, writeProject(t), "true")

	assert.Len(t, eng.Project.Pods, 4)
	assert.NotNil(t, eng.Secrets)
	assert.Len(t, eng.Registry.Sources(), 2)
}

func TestEngine_Target_DefaultAndUnknown(t *testing.T) {
	eng := newTestEngine(t, writeProject(t), "true")

	target, err := eng.Target("")
	require.NoError(t, err)
	assert.Equal(t, "development", target.Name)

	target, err = eng.Target("production")
	require.NoError(t, err)
	assert.Equal(t, "production", target.Name)

	_, err = eng.Target("staging")
	require.ErrorIs(t, err, project.ErrUnknownTarget)
}

// =============================================================================
// Synthesis Tests
// =============================================================================

func TestEngine_Generate_WritesOutputTree(t *testing.T) {
	eng := newTestEngine(t, writeProject(t), "true")
	target := devTarget(t, eng)

	files, err := eng.Generate(context.Background(), target, false)
	require.NoError(t, err)

	assert.Len(t, files, 3, "metrics is production-only")
	assert.Contains(t, files, "db")
	assert.Contains(t, files, "frontend")
	assert.Contains(t, files, "migrate")

	frontend := readOutput(t, eng, "development", "frontend")
	web := frontend.Services["web"]
	assert.Equal(t, "development", web.Labels["io.fdy.cage.target"])
	assert.Equal(t, "frontend", web.Labels["io.fdy.cage.pod"])
	assert.Nil(t, web.Build, "build stripped outside build commands")
	assert.Equal(t, "hello_web", web.Image)

	password, ok := web.Environment.Get("DB_PASSWORD")
	require.True(t, ok, "secret injected")
	assert.Equal(t, "hunter2", password)

	logMount := filepath.Join(eng.store.Layout.Pods, "log") + ":/usr/src/app/log"
	assert.Contains(t, web.Volumes, logMount, "relative volume anchored at the pods dir")

	migrate := readOutput(t, eng, "development", "migrate")
	assert.Nil(t, migrate.Meta, "x-cage stays out of generated output")
}

func TestEngine_Generate_ProductionOverride(t *testing.T) {
	eng := newTestEngine(t, writeProject(t), "true")
	target, err := eng.Target("production")
	require.NoError(t, err)

	files, err := eng.Generate(context.Background(), target, false)
	require.NoError(t, err)
	assert.Len(t, files, 4, "metrics joins in production")

	frontend := readOutput(t, eng, "production", "frontend")
	env, _ := frontend.Services["web"].Environment.Get("RAILS_ENV")
	assert.Equal(t, "production", env)
}

func TestEngine_Generate_TokensInjected(t *testing.T) {
	st := writeProject(t)
	eng, err := New(st, nil, Options{
		ProjectName:   "hello",
		DefaultTarget: "development",
		Tokens:        map[string]string{"web": "SECRET_TOKEN"},
		HomeDir:       "/home/dev",
		Logger:        discardLogger(),
	})
	require.NoError(t, err)
	target := devTarget(t, eng)

	_, err = eng.Generate(context.Background(), target, false)
	require.NoError(t, err)
	first, ok := readOutput(t, eng, "development", "frontend").Services["web"].Environment.Get("SECRET_TOKEN")
	require.True(t, ok)
	assert.NotEmpty(t, first)

	// A fresh engine over the same project issues the same token.
	again, err := New(st, nil, Options{
		ProjectName:   "hello",
		DefaultTarget: "development",
		Tokens:        map[string]string{"web": "SECRET_TOKEN"},
		HomeDir:       "/home/dev",
		Logger:        discardLogger(),
	})
	require.NoError(t, err)
	_, err = again.Generate(context.Background(), target, false)
	require.NoError(t, err)
	second, _ := readOutput(t, again, "development", "frontend").Services["web"].Environment.Get("SECRET_TOKEN")
	assert.Equal(t, first, second)
}

func TestEngine_Export_PortableTree(t *testing.T) {
	eng := newTestEngine(t, writeProject(t), "true")
	target := devTarget(t, eng)
	dir := t.TempDir()

	require.NoError(t, eng.Export(context.Background(), target, dir))

	data, err := os.ReadFile(filepath.Join(dir, "development", "frontend.yml"))
	require.NoError(t, err)
	cfg, err := compose.Parse("frontend.yml", data)
	require.NoError(t, err)

	web := cfg.Services["web"]
	assert.Contains(t, web.Volumes, "./log:/usr/src/app/log", "relative layout survives export")
	assert.Empty(t, web.ExtraHosts)
	assert.Nil(t, web.Build)
	assert.Equal(t, "development", web.Labels["io.fdy.cage.target"])
}

func TestEngine_Build_KeepsBuildSections(t *testing.T) {
	bin, logFile := fakeCompose(t)
	eng := newTestEngine(t, writeProject(t), bin)
	target := devTarget(t, eng)

	require.NoError(t, eng.Build(context.Background(), target, []string{"frontend"}))

	frontend := readOutput(t, eng, "development", "frontend")
	require.NotNil(t, frontend.Services["web"].Build)
	assert.Equal(t, "https://github.com/faradayio/rails_hello.git#release",
		frontend.Services["web"].Build.Context)

	calls := composeCalls(t, logFile)
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "build")
}

// =============================================================================
// Command Tests
// =============================================================================

func TestEngine_Up_InvokesComposePerServingPod(t *testing.T) {
	bin, logFile := fakeCompose(t)
	eng := newTestEngine(t, writeProject(t), bin)
	target := devTarget(t, eng)

	require.NoError(t, eng.Up(context.Background(), target, nil, false))

	calls := composeCalls(t, logFile)
	require.Len(t, calls, 2, "one-off pods stay down")
	assert.Equal(t,
		"-p hello -f "+eng.store.Layout.OutputFile("development", "db")+" up -d",
		calls[0])
	assert.Equal(t,
		"-p hello -f "+eng.store.Layout.OutputFile("development", "frontend")+" up -d",
		calls[1])
}

func TestEngine_Up_ExplicitOneOffPod(t *testing.T) {
	bin, logFile := fakeCompose(t)
	eng := newTestEngine(t, writeProject(t), bin)
	target := devTarget(t, eng)

	require.NoError(t, eng.Up(context.Background(), target, []string{"migrate"}, false))

	calls := composeCalls(t, logFile)
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "migrate.yml")
}

func TestEngine_Up_UnknownAndDisabledPods(t *testing.T) {
	bin, _ := fakeCompose(t)
	eng := newTestEngine(t, writeProject(t), bin)
	target := devTarget(t, eng)

	err := eng.Up(context.Background(), target, []string{"ghost"}, false)
	require.ErrorIs(t, err, project.ErrUnknownPod)

	err = eng.Up(context.Background(), target, []string{"metrics"}, false)
	require.ErrorIs(t, err, ErrPodDisabled)
}

func TestEngine_Run_SoleServicePod(t *testing.T) {
	bin, logFile := fakeCompose(t)
	eng := newTestEngine(t, writeProject(t), bin)
	target := devTarget(t, eng)

	require.NoError(t, eng.Run(context.Background(), target, "migrate", "", "rake", "db:migrate"))

	calls := composeCalls(t, logFile)
	require.Len(t, calls, 1)
	assert.True(t, strings.HasSuffix(calls[0], "run --rm migrate rake db:migrate"), calls[0])
}

func TestEngine_Run_AmbiguousService(t *testing.T) {
	bin, logFile := fakeCompose(t)
	eng := newTestEngine(t, writeProject(t), bin)
	target := devTarget(t, eng)

	err := eng.Run(context.Background(), target, "frontend", "")
	require.ErrorIs(t, err, ErrAmbiguousService)

	require.NoError(t, eng.Run(context.Background(), target, "frontend", "web"))
	calls := composeCalls(t, logFile)
	require.Len(t, calls, 1)
	assert.True(t, strings.HasSuffix(calls[0], "run --rm web"), calls[0])
}

func TestEngine_Logs_FiltersByService(t *testing.T) {
	bin, logFile := fakeCompose(t)
	eng := newTestEngine(t, writeProject(t), bin)
	target := devTarget(t, eng)

	require.NoError(t, eng.Logs(context.Background(), target, []string{"web"}))

	calls := composeCalls(t, logFile)
	require.Len(t, calls, 1, "only the pod hosting the service is asked")
	assert.Contains(t, calls[0], "frontend.yml")
	assert.True(t, strings.HasSuffix(calls[0], "logs web"), calls[0])
}

func TestEngine_Logs_UnknownService(t *testing.T) {
	bin, _ := fakeCompose(t)
	eng := newTestEngine(t, writeProject(t), bin)
	target := devTarget(t, eng)

	err := eng.Logs(context.Background(), target, []string{"ghost"})
	require.ErrorIs(t, err, project.ErrUnknownService)
}

func TestEngine_Logs_AllPods(t *testing.T) {
	bin, logFile := fakeCompose(t)
	eng := newTestEngine(t, writeProject(t), bin)
	target := devTarget(t, eng)

	require.NoError(t, eng.Logs(context.Background(), target, nil))

	calls := composeCalls(t, logFile)
	assert.Len(t, calls, 2)
}

// =============================================================================
// Runtime State Tests
// =============================================================================

func TestEngine_Status_NoDocker(t *testing.T) {
	eng := newTestEngine(t, writeProject(t), "true")
	target := devTarget(t, eng)

	_, err := eng.Status(context.Background(), target)
	require.ErrorIs(t, err, ErrNoDocker)
}

func TestEngine_WaitReady_NoDocker(t *testing.T) {
	eng := newTestEngine(t, writeProject(t), "true")
	target := devTarget(t, eng)

	err := eng.WaitReady(context.Background(), target, nil, 0)
	require.ErrorIs(t, err, ErrNoDocker)
}

// =============================================================================
// Source Management Tests
// =============================================================================

func TestEngine_Sources_List(t *testing.T) {
	eng := newTestEngine(t, writeProject(t), "true")

	sources := eng.Sources()
	require.Len(t, sources, 2)
	assert.Equal(t, "coffee-rails_4.1.x", sources[0].Alias)
	assert.True(t, sources[0].Mounted, "persisted flag loaded")
	assert.False(t, sources[0].Available, "nothing cloned yet")
	assert.Equal(t, "rails_hello_release", sources[1].Alias)
	assert.Equal(t, "https://github.com/faradayio/rails_hello.git#release", sources[1].Origin)
}

func TestEngine_MountSource_PersistsFlag(t *testing.T) {
	eng := newTestEngine(t, writeProject(t), "true")

	// A checkout already on disk keeps MountSource off the network.
	checkout := filepath.Join(eng.store.Layout.Source, "rails_hello_release")
	_, err := gogit.PlainInit(checkout, false)
	require.NoError(t, err)

	require.NoError(t, eng.MountSource(context.Background(), "rails_hello_release"))

	data, err := os.ReadFile(eng.store.Layout.MountStateFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "rails_hello_release: true")

	src, err := eng.Registry.ByAlias("rails_hello_release")
	require.NoError(t, err)
	assert.True(t, src.Mounted)
}

func TestEngine_MountedSource_RewritesBuildContext(t *testing.T) {
	eng := newTestEngine(t, writeProject(t), "true")
	checkout := filepath.Join(eng.store.Layout.Source, "rails_hello_release")
	_, err := gogit.PlainInit(checkout, false)
	require.NoError(t, err)
	require.NoError(t, eng.MountSource(context.Background(), "rails_hello_release"))
	target := devTarget(t, eng)

	_, err = eng.Generate(context.Background(), target, true)
	require.NoError(t, err)

	frontend := readOutput(t, eng, "development", "frontend")
	require.NotNil(t, frontend.Services["web"].Build)
	assert.Equal(t, checkout, frontend.Services["web"].Build.Context)
}

func TestEngine_UnmountSource(t *testing.T) {
	eng := newTestEngine(t, writeProject(t), "true")

	require.NoError(t, eng.UnmountSource("coffee-rails_4.1.x"))

	data, err := os.ReadFile(eng.store.Layout.MountStateFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "coffee-rails_4.1.x: false")
}

func TestEngine_CloneSource_MarksMounted(t *testing.T) {
	eng := newTestEngine(t, writeProject(t), "true")

	// An existing checkout short-circuits the clone, so no network is hit.
	checkout := filepath.Join(eng.store.Layout.Source, "rails_hello_release")
	_, err := gogit.PlainInit(checkout, false)
	require.NoError(t, err)

	require.NoError(t, eng.CloneSource(context.Background(), "rails_hello_release"))

	src, err := eng.Registry.ByAlias("rails_hello_release")
	require.NoError(t, err)
	assert.True(t, src.Mounted)

	data, err := os.ReadFile(eng.store.Layout.MountStateFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "rails_hello_release: true")
}

func TestEngine_CloneSource_UnknownAlias(t *testing.T) {
	eng := newTestEngine(t, writeProject(t), "true")

	err := eng.CloneSource(context.Background(), "ghost")
	require.ErrorIs(t, err, source.ErrUnknownSource)
}
