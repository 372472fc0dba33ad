// Package platform normalizes host OS and CPU names into the two naming
// schemes the manifest ecosystem uses: the checkout-variable scheme
// (host_os/host_cpu) and the binary-package placeholder scheme
// (${os}/${arch}/${platform}).
package platform

import "runtime"

// Platform identifies the machine a checkout is being assembled on.
type Platform struct {
	// OS is a GOOS-style tag (linux, windows, darwin, ...).
	OS string

	// Arch is a machine architecture string (amd64, x86_64, arm64,
	// aarch64, ...).
	Arch string
}

// Host returns the platform of the running process.
func Host() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// HostOS returns the checkout-variable OS name: one of linux, win or
// mac, or the raw OS tag when the platform is not one of the three
// families.
func (p Platform) HostOS() string {
	switch p.OS {
	case "linux":
		return "linux"
	case "windows":
		return "win"
	case "darwin":
		return "mac"
	}
	return p.OS
}

// HostCPU returns the checkout-variable CPU name: x64 or arm64, or the
// raw machine string for anything else.
func (p Platform) HostCPU() string {
	switch p.Arch {
	case "amd64", "x86_64":
		return "x64"
	case "arm64", "aarch64":
		return "arm64"
	}
	return p.Arch
}

// PackageOS returns the ${os} placeholder value: one of linux, windows
// or mac, or the raw OS tag.
func (p Platform) PackageOS() string {
	switch p.OS {
	case "linux":
		return "linux"
	case "windows":
		return "windows"
	case "darwin":
		return "mac"
	}
	return p.OS
}

// PackageArch returns the ${arch} placeholder value: amd64 or arm64, or
// the raw machine string.
func (p Platform) PackageArch() string {
	switch p.Arch {
	case "amd64", "x86_64":
		return "amd64"
	case "arm64", "aarch64":
		return "arm64"
	}
	return p.Arch
}

// PackagePlatform returns the ${platform} placeholder value,
// "<os>-<arch>" in package naming.
func (p Platform) PackagePlatform() string {
	return p.PackageOS() + "-" + p.PackageArch()
}
