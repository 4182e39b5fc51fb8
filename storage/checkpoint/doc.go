/*
Package checkpoint implements the on-disk format the shipped backends use
for Save and Load.

A checkpoint file is a protobuf framed stream:

	magic     raw bytes  "MEEPOCKP"
	version   varint
	dtypes    3 x varint (key, value, score)
	dim       varint
	count     varint
	entries   count x (zigzag key, varint score, raw row bytes)

followed by the little endian CRC32 (IEEE) of everything before it. Rows
are the little endian encoding of dim elements of the value dtype.
*/
package checkpoint
