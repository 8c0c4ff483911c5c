package chromium

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livedesk/cookiegrab/log"
)

const testRoot = "/home/u/.config/google-chrome"

func newTestInstallation(t *testing.T, dirs []string, localState string) *Installation {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, d := range dirs {
		require.NoError(t, fs.MkdirAll(filepath.Join(testRoot, d), 0o755))
	}
	if localState != "" {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(testRoot, localStateFile), []byte(localState), 0o600))
	}
	return NewInstallation(fs, testRoot, nil, log.NewNullLogger())
}

func TestListProfiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		dirs       []string
		localState string
		want       []Profile
	}{
		{
			name: "local_state",
			dirs: []string{"Default", "Profile 1"},
			localState: `{"profile":{"info_cache":{
				"Profile 1":{"name":"Work"},
				"Default":{"name":"Personal"}
			}}}`,
			want: []Profile{
				{ID: "Default", Name: "Personal", Path: filepath.Join(testRoot, "Default")},
				{ID: "Profile 1", Name: "Work", Path: filepath.Join(testRoot, "Profile 1")},
			},
		},
		{
			name: "local_state_missing_dir_skipped",
			dirs: []string{"Default"},
			localState: `{"profile":{"info_cache":{
				"Default":{"name":"Person 1"},
				"Profile 3":{"name":"Gone"}
			}}}`,
			want: []Profile{
				{ID: "Default", Name: "Person 1", Path: filepath.Join(testRoot, "Default")},
			},
		},
		{
			name: "local_state_name_fallback",
			dirs: []string{"Default", "Profile 2", "Profile 4"},
			localState: `{"profile":{"info_cache":{
				"Profile 2":{},
				"Profile 4":{"name":null},
				"Default":{"name":42}
			}}}`,
			want: []Profile{
				{ID: "Default", Name: "Default", Path: filepath.Join(testRoot, "Default")},
				{ID: "Profile 2", Name: "Profile 2", Path: filepath.Join(testRoot, "Profile 2")},
				{ID: "Profile 4", Name: "Profile 4", Path: filepath.Join(testRoot, "Profile 4")},
			},
		},
		{
			name: "equal_names_keep_discovery_order",
			dirs: []string{"Default", "Profile 1"},
			localState: `{"profile":{"info_cache":{
				"Profile 1":{"name":"Same"},
				"Default":{"name":"Same"}
			}}}`,
			want: []Profile{
				{ID: "Default", Name: "Same", Path: filepath.Join(testRoot, "Default")},
				{ID: "Profile 1", Name: "Same", Path: filepath.Join(testRoot, "Profile 1")},
			},
		},
		{
			name: "scan_without_local_state",
			dirs: []string{"Default", "Profile 1", "profile 2", "Profile2", "System Profile", "Guest Profile"},
			want: []Profile{
				{ID: "Default", Name: "Default", Path: filepath.Join(testRoot, "Default")},
				{ID: "Profile 1", Name: "Profile 1", Path: filepath.Join(testRoot, "Profile 1")},
			},
		},
		{
			name:       "scan_on_malformed_local_state",
			dirs:       []string{"Profile 7"},
			localState: `{"profile":`,
			want: []Profile{
				{ID: "Profile 7", Name: "Profile 7", Path: filepath.Join(testRoot, "Profile 7")},
			},
		},
		{
			name:       "scan_when_info_cache_missing",
			dirs:       []string{"Default"},
			localState: `{"browser":{}}`,
			want: []Profile{
				{ID: "Default", Name: "Default", Path: filepath.Join(testRoot, "Default")},
			},
		},
		{
			name:       "scan_when_local_state_yields_nothing",
			dirs:       []string{"Default"},
			localState: `{"profile":{"info_cache":{"Profile 9":{"name":"Gone"}}}}`,
			want: []Profile{
				{ID: "Default", Name: "Default", Path: filepath.Join(testRoot, "Default")},
			},
		},
		{
			name: "empty_root",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inst := newTestInstallation(t, append([]string{""}, tt.dirs...), tt.localState)
			got, err := inst.ListProfiles()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListProfilesSortedByName(t *testing.T) {
	t.Parallel()

	inst := newTestInstallation(t, []string{"Default", "Profile 1", "Profile 2"}, `{"profile":{"info_cache":{
		"Default":{"name":"b"},
		"Profile 1":{"name":"B"},
		"Profile 2":{"name":"a"}
	}}}`)
	got, err := inst.ListProfiles()
	require.NoError(t, err)

	var names []string
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"B", "a", "b"}, names)
}

func TestListProfilesNotInstalled(t *testing.T) {
	t.Parallel()

	for _, root := range []string{"", "/nonexistent"} {
		inst := NewInstallation(afero.NewMemMapFs(), root, nil, log.NewNullLogger())
		_, err := inst.ListProfiles()
		assert.True(t, errors.Is(err, ErrNotInstalled), "root %q: %v", root, err)
	}
}

func TestFindExecutable(t *testing.T) {
	t.Parallel()

	const (
		user   = "/home/u/.local/bin/google-chrome"
		system = "/opt/google/chrome/chrome"
		distro = "/usr/bin/google-chrome"
	)
	candidates := []string{user, system, distro}

	tests := []struct {
		name    string
		present []string
		want    string
	}{
		{name: "user_install_first", present: []string{distro, user, system}, want: user},
		{name: "system_priority", present: []string{distro, system}, want: system},
		{name: "last_candidate", present: []string{distro}, want: distro},
		{name: "none"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			for _, p := range tt.present {
				require.NoError(t, afero.WriteFile(fs, p, []byte{}, 0o755))
			}
			inst := NewInstallation(fs, testRoot, append([]string{""}, candidates...), log.NewNullLogger())

			got, err := inst.FindExecutable()
			if tt.want == "" {
				assert.True(t, errors.Is(err, ErrNotInstalled), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultInstallationCandidates(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, defaultExecutables())
}
