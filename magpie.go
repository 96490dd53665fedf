// Package magpie converts SwiftUI projects into Jetpack Compose Android
// projects. The command line lives in cmd/magpie.
package magpie

// Version is the released version of the magpie CLI.
const Version = "0.1.0"
