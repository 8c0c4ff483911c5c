package chromium

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	// DefaultProfile is the directory of the profile Chrome creates first.
	DefaultProfile = "Default"

	localStateFile   = "Local State"
	profileDirPrefix = "Profile "
)

// Profile is a browser profile found in the user data directory.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"profile_path"`
}

// ListProfiles returns the profiles of the installation sorted by display
// name. Profiles declared in Local State are preferred; when there are none
// the user data directory is scanned instead.
func (i *Installation) ListProfiles() ([]Profile, error) {
	root, err := i.UserDataDir()
	if err != nil {
		return nil, err
	}

	profiles, err := i.profilesFromLocalState(root)
	if err != nil {
		i.logger.Debugf("Installation:ListProfiles", "falling back to a directory scan: %v", err)
	}
	if len(profiles) == 0 {
		profiles = i.scanProfiles(root)
	}

	sort.SliceStable(profiles, func(a, b int) bool {
		return profiles[a].Name < profiles[b].Name
	})

	i.logger.Infof("Installation:ListProfiles", "found %d Chrome profiles", len(profiles))

	return profiles, nil
}

func (i *Installation) profilesFromLocalState(root string) ([]Profile, error) {
	path := filepath.Join(root, localStateFile)
	buf, err := afero.ReadFile(i.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", path)
	}

	var state struct {
		Profile struct {
			InfoCache map[string]json.RawMessage `json:"info_cache"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(buf, &state); err != nil {
		return nil, errors.Wrapf(err, "parsing %q", path)
	}
	if len(state.Profile.InfoCache) == 0 {
		return nil, errors.Errorf("no profile.info_cache entries in %q", path)
	}

	dirs := make([]string, 0, len(state.Profile.InfoCache))
	for dir := range state.Profile.InfoCache {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var profiles []Profile
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		p := filepath.Join(root, dir)
		if ok, _ := afero.Exists(i.fs, p); !ok {
			continue
		}
		profiles = append(profiles, Profile{
			ID:   dir,
			Name: displayName(state.Profile.InfoCache[dir], dir),
			Path: p,
		})
	}

	return profiles, nil
}

// displayName returns the "name" of an info_cache entry, or fallback if the
// entry has no string name.
func displayName(info json.RawMessage, fallback string) string {
	var entry struct {
		Name json.RawMessage `json:"name"`
	}
	if err := json.Unmarshal(info, &entry); err != nil || entry.Name == nil {
		return fallback
	}
	var name *string
	if err := json.Unmarshal(entry.Name, &name); err != nil || name == nil {
		return fallback
	}
	return *name
}

func (i *Installation) scanProfiles(root string) []Profile {
	var profiles []Profile

	def := filepath.Join(root, DefaultProfile)
	if ok, _ := afero.Exists(i.fs, def); ok {
		profiles = append(profiles, Profile{ID: DefaultProfile, Name: DefaultProfile, Path: def})
	}

	entries, err := afero.ReadDir(i.fs, root)
	if err != nil {
		i.logger.Debugf("Installation:scanProfiles", "%v", errors.Wrapf(err, "listing %q", root))
		return profiles
	}
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), profileDirPrefix) {
			continue
		}
		profiles = append(profiles, Profile{
			ID:   e.Name(),
			Name: e.Name(),
			Path: filepath.Join(root, e.Name()),
		})
	}

	return profiles
}
