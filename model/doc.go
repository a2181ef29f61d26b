// Package model defines the image types that flow through the codec.
//
// # Types
//
//   - GrayscaleImage: 8-bit row-major pixel buffer
//   - EncodedImage: block grid geometry, codebook and one index per block
//
// Only whole blocks are encoded. Pixels to the right of the last full
// block column or below the last full block row are not represented in
// an EncodedImage and stay zero when it is decoded.
package model
