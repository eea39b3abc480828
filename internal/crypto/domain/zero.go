package domain

// Zero overwrites b with zeros. Safe on nil.
func Zero(b []byte) {
	clear(b)
}
