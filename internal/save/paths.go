package save

import "path/filepath"

const (
	// MainSaveName is the file the game reads and writes during play.
	MainSaveName = "steamcampaign01.sav"

	// BackupDirName is the backup subdirectory, both under the game's save
	// directory and under the application directory.
	BackupDirName = "backups"

	vendorDir  = "Glaiel Games"
	gameDir    = "Mewgenics"
	steamIDDir = "76561197960287930"
	savesDir   = "saves"
)

// LocationSet holds every filesystem location the manager works with.
// It is a value: build it once with Resolver.Resolve and pass it around.
type LocationSet struct {
	// Base is the directory holding the main save and the game's backups.
	Base            string
	MainSave        string
	RemoteBackupDir string
	LocalBackupDir  string
}

// Resolver derives a LocationSet from a user identity.
//
// UsersRoot is the directory holding per-user profiles (C:\Users on Windows).
// AppDir is the application's own directory; local backups live under it.
type Resolver struct {
	UsersRoot string
	AppDir    string
}

// Resolve builds the LocationSet for identity. A non-empty overrideRoot
// replaces the per-user save directory for the main save and the game's
// backups; local backups always stay under AppDir.
// Resolve performs no I/O.
func (r Resolver) Resolve(identity, overrideRoot string) LocationSet {
	base := overrideRoot
	if base == "" {
		base = r.SaveDir(identity)
	}
	return LocationSet{
		Base:            base,
		MainSave:        filepath.Join(base, MainSaveName),
		RemoteBackupDir: filepath.Join(base, BackupDirName),
		LocalBackupDir:  filepath.Join(r.AppDir, BackupDirName),
	}
}

// SaveDir returns the canonical per-user save directory:
// <UsersRoot>/<identity>/AppData/Roaming/Glaiel Games/Mewgenics/<id>/saves
func (r Resolver) SaveDir(identity string) string {
	return filepath.Join(r.UsersRoot, identity, "AppData", "Roaming", vendorDir, gameDir, steamIDDir, savesDir)
}
