/*
Package compute provides the element-wise kernels storage backends run on
embedding rows, behind an abstraction over the available computational
implementations, currently:

	- naive (plain loops, no optimizations)
	- blas32 (gonum blas32 interface)

Future:

	- cuda
*/
package compute
