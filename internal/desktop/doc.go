// Package desktop applies a cached image as the desktop background by running
// a user-configured command, for example:
//
//	[background]
//	command = ["gsettings", "set", "org.gnome.desktop.background", "picture-uri", "file://{path}"]
//
// Every "{path}" in the arguments is replaced with the image path. When no
// argument holds the placeholder the path is appended as the last argument.
package desktop
