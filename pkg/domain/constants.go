package domain

// Blank is the reserved symbol of an unwritten tape cell.
// It also marks the left and right edges of the input.
const Blank rune = '_'

// InitialHead is the head location at the start of every run:
// the cell right after the leading blank.
const InitialHead = 1
