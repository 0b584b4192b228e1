package ils

// Seed выводит сид запуска run из базового сида (splitmix64).
func Seed(base int64, run int) int64 {
	z := uint64(base) + uint64(run+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}
