/*
Package distmesh generates unstructured triangle meshes of planar domains
described by a signed distance function.

The domain is the region where the distance field fd is negative. The
desired edge length over the domain is given by a density field fh which is
relative: only ratios of its values matter, the absolute scale is set by the
edge length h0. Mesh nodes start on a hexagonal lattice thinned according to
fh and are relaxed as if every edge were a spring that only repels. Nodes
pushed outside the domain are projected back onto its boundary and the node
set is retriangulated whenever nodes moved far enough to invalidate the
triangulation.

Fields are evaluated in batches, see Field. Composed fields such as those in
package form2 borrow scratch memory from the VecPool passed as userData.

	res, err := distmesh.Generate(ctx, disk, form2.Uniform(), 0.1, r2.Box{}, nil, distmesh.DefaultConfig())
*/
package distmesh
