// Package config persists the last applied device settings.
//
// The mouse is driven in no-store mode, so colors vanish when it loses
// power. The CLI saves the last applied logo/wheel colors to a small YAML
// file in the OS-appropriate config directory and re-applies them when run
// without arguments. The protocol core neither reads nor writes this file;
// persistence is purely a collaborator concern of the CLI layer.
package config
