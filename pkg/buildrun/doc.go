// Package buildrun ensures a build directory exists and then runs the generate, build and run
// steps of a CMake-style project one after another.
// Every step is executed as a separate command through the mvdan.cc/sh interpreter, so no host
// shell is involved and each exit status is checked before the next step starts.
package buildrun
