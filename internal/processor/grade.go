package processor

// outlierGrade is assigned to clusters that don't have a valid grade: too
// many hits to be an x-ray, a hit outside the 3x3 neighborhood, or a grid
// sum absent from the lookup table.
const outlierGrade uint8 = 7

// gridWeight is the bit-weight contributed by a cluster member at
// (deltaY, deltaX) relative to the max-energy pixel, remapped to
// [deltaY+1][deltaX+1] indices.
var gridWeight = [3][3]uint8{
	{1, 2, 4},
	{8, 0, 16},
	{32, 64, 128},
}

// gradeLookup maps a grid-sum to a grade 0..6. Transcribed in full from the
// reference grading table; any sum absent from this map is an outlier.
var gradeLookup = map[uint8]uint8{
	0: 0,

	1: 1, 4: 1, 32: 1, 128: 1, 5: 1, 33: 1, 132: 1, 160: 1,
	36: 1, 129: 1, 37: 1, 133: 1, 161: 1, 164: 1, 165: 1,

	64: 2, 65: 2, 68: 2, 69: 2, 2: 2, 34: 2, 130: 2, 162: 2,

	8: 3, 12: 3, 136: 3, 140: 3,

	16: 4, 17: 4, 48: 4, 49: 4,

	3: 5, 6: 5, 9: 5, 20: 5, 40: 5, 96: 5, 144: 5, 192: 5,
	13: 5, 21: 5, 35: 5, 38: 5, 44: 5, 52: 5, 97: 5, 100: 5,
	131: 5, 134: 5, 137: 5, 145: 5, 168: 5, 176: 5, 193: 5,
	196: 5, 53: 5, 101: 5, 141: 5, 163: 5, 166: 5, 172: 5,
	177: 5, 197: 5,

	72: 6, 76: 6, 104: 6, 108: 6, 10: 6, 11: 6, 138: 6, 139: 6,
	18: 6, 22: 6, 50: 6, 54: 6, 80: 6, 81: 6, 208: 6, 209: 6,
}

// clusterGrade returns the grade for members[startIdx:endIdx+1] given the
// index of the max-energy member within that same slice. Corrects the
// boundary-check transcription error from the reference implementation:
// the predicate is abs(deltaY) > 1 (not abs(deltaY > 1)).
func clusterGrade(members []hitEnergy, startIdx, endIdx, maxEIdx int) uint8 {
	if endIdx-startIdx+1 > 9 {
		return outlierGrade
	}

	center := members[maxEIdx]
	var sum uint8
	for i := startIdx; i <= endIdx; i++ {
		dx := int(members[i].x) - int(center.x)
		if abs(dx) > 1 {
			return outlierGrade
		}
		dy := int(members[i].y) - int(center.y)
		if abs(dy) > 1 {
			return outlierGrade
		}
		sum += gridWeight[dy+1][dx+1]
	}

	grade, ok := gradeLookup[sum]
	if !ok {
		return outlierGrade
	}
	return grade
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
