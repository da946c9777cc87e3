package usetree

// Version is the library version. Release builds override it via
// -ldflags "-X github.com/RobbyUitbeijerse/use-tree.Version=...".
var Version = "dev"
