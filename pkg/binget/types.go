// Package binget holds the public result types produced by the install and
// update engines.
package binget

// PackageError represents an error associated with a specific package.
type PackageError struct {
	Package string
	Err     error
}

func (e PackageError) Error() string {
	return e.Package + ": " + e.Err.Error()
}

func (e PackageError) Unwrap() error {
	return e.Err
}

// InstalledItem records one successfully installed package.
type InstalledItem struct {
	Name     string
	Version  string
	Platform string
	Upgraded bool // true when a previous version was replaced
}

// InstallResult holds the outcome of an install batch.
type InstallResult struct {
	Installed []InstalledItem
	Failed    []PackageError
}

// SuccessCount returns the number of packages installed.
func (r *InstallResult) SuccessCount() int {
	return len(r.Installed)
}

// FailureCount returns the number of packages that failed.
func (r *InstallResult) FailureCount() int {
	return len(r.Failed)
}

// UpgradeCandidate is an installed package with a newer upstream version.
type UpgradeCandidate struct {
	Name    string
	Current string
	Latest  string
}

// RemovedItem records one removed package.
type RemovedItem struct {
	Name    string
	Version string
}

// RemoveResult holds the outcome of a remove batch.
type RemoveResult struct {
	Removed []RemovedItem
	Failed  []PackageError
}
