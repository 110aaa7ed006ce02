package minhash

// BuildTemplate builds the empty scaled-MinHash sketch used to select a
// compatible sketch out of a loaded signature file, mirroring the CLI's
// --ksize/--scaled flags.
func BuildTemplate(ksize uint32, scaled uint64) MinHash {
	return MinHash{
		Ksize:        ksize,
		Seed:         DefaultSeed,
		MaxHash:      MaxHashForScaled(scaled),
		Scaled:       scaled,
		HashFunction: HashMurmur64DNA,
	}
}
