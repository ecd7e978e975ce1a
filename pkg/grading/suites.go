package grading

import "strings"

// Problems returns the three standard exercises, in order.
func Problems() []Suite {
	var p1 []string
	for n := 0; n < 5; n++ {
		p1 = append(p1, strings.Repeat("0", 2*n)+strings.Repeat("1", n))
	}

	return []Suite{
		{
			Name:        "problem1",
			Description: "L = { 0^2n 1^n | n is a natural number }",
			Accept:      p1,
			Reject:      []string{"0", "01", "101", "0010", "1111"},
		},
		{
			Name:        "problem2",
			Description: "L = { w b w^R | w is a binary string and b is a bit }",
			Accept:      []string{"1", "000", "010", "11011", "1110111"},
			Reject:      []string{"", "00", "0110", "110011", "0010"},
		},
		{
			Name:        "problem3",
			Description: "L = { 0^i 1^j 0^k | i, j, and k are positive integers and i * j = k }",
			Accept:      []string{"010", "01111100000", "00111000000", "000111000000000"},
			Reject:      []string{"", "011", "0011100000", "0001110000000001"},
		},
	}
}

// Problem returns the standard suite called name.
func Problem(name string) (Suite, bool) {
	for _, s := range Problems() {
		if s.Name == name {
			return s, true
		}
	}
	return Suite{}, false
}
