// Package gardenplanner is the composition root for the garden planner's crop
// data importer.
//
// The importer reads the crop record set declared in a planting-calendar page
// (const V=[...] inside a <script> element) and merges selected fields into the
// planner's crop data file. Only the declaration of the record set is rewritten;
// every other byte of the target file, including its auxiliary declarations, is
// preserved.
//
// Layout:
//
//   - pkg/literal parses and emits the literal subset of the declarations.
//   - pkg/block locates declarations and splices re-rendered ones back in.
//   - pkg/core holds the merge engine and the import service.
//   - pkg/adapters/fs is the default filesystem document store.
//   - pkg/proxy is the Master Gardener question proxy.
//
// Usage:
//
//	svc, err := gardenplanner.New(".", gardenplanner.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	report, err := svc.Import(ctx, core.ImportRequest{
//		Source: "downloads/calendar-*.html",
//		Target: "data/crops.js",
//	})
package gardenplanner
