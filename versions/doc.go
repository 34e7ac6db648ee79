// Package versions orders Folia version strings and discovers the
// version directories checked into the repository.
//
// Ordering treats the dotted numeric components as a tuple followed
// by a release marker, so "1.21.9-pre2" sorts before "1.21.9", and the
// "latest" sentinel sorts after every concrete version. Discovery is
// pure filesystem inspection; it never talks to the network.
package versions
