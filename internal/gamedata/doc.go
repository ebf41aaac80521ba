// Package gamedata holds bindings generated by csvpack from the sheets in
// testdata, together with the store and strings file compiled from them.
// Regenerate with UPDATE_GOLDEN=1 go test ./internal/gamedata.
package gamedata
