// jaguar_tables.go - shared decode tables

package main

import "sync"

// jaguarTables holds the lookup tables shared by every core. They are pure
// functions of their index and are never written after construction.
type jaguarTables struct {
	mirror    [65536]uint16
	condition [256]uint8
}

var (
	sharedTablesOnce sync.Once
	sharedTables     *jaguarTables
)

// jaguarQuick decodes a 5-bit quick immediate. Zero encodes 32.
var jaguarQuick = [32]uint32{
	32, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
	16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31,
}

// jaguarSharedTables returns the process-wide tables, building them on first use.
func jaguarSharedTables() *jaguarTables {
	sharedTablesOnce.Do(func() {
		t := &jaguarTables{}
		for i := range t.mirror {
			t.mirror[i] = mirror16(uint16(i))
		}

		/*
		   Condition codes test Z in bits 0/1 and one of C or N in bits 2/3.
		   Bit 4 of the code selects N instead of C (C<<1 == N).
		*/
		for i := range 8 {
			for j := range 32 {
				result := uint8(1)
				if j&1 != 0 && i&JAG_ZFLAG != 0 {
					result = 0
				}
				if j&2 != 0 && i&JAG_ZFLAG == 0 {
					result = 0
				}
				if j&4 != 0 && i&(JAG_CFLAG<<(j>>4)) != 0 {
					result = 0
				}
				if j&8 != 0 && i&(JAG_CFLAG<<(j>>4)) == 0 {
					result = 0
				}
				t.condition[i*32+j] = result
			}
		}
		sharedTables = t
	})
	return sharedTables
}

func mirror16(v uint16) uint16 {
	var r uint16
	for bit := range 16 {
		if v&(1<<bit) != 0 {
			r |= 1 << (15 - bit)
		}
	}
	return r
}
