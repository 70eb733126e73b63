// Package gpu is the device layer under grafica.
//
// It narrows the GPU API down to what a single-pipeline render scaffold
// needs: one surface, buffers created from initial contents, one uniform
// bind group, shader modules, one render pipeline and per-frame render
// passes. Two backends implement the contract:
//
//   - "wgpu": gogpu/wgpu on the platform's primary graphics API
//     (excluded with the nogpu build tag)
//   - "headless": a recording device that keeps every buffer, write,
//     pass and draw in memory for inspection
//
// Backends are looked up by name through a [gpucontext.Registry]; the
// best available one is chosen when no name is given.
package gpu
