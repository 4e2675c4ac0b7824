// Package tasks orchestrates a playlist transfer with real-time progress reporting.
//
// # Transfer
//
// [TransferEngine.Run] performs the full transfer:
//
//  1. Authenticate with the destination service
//  2. Import the source playlist (sample list, file export or public page)
//  3. Create the destination playlist
//  4. Search for each track in source order and add the first match
//
// Steps 1 to 3 abort the run on failure. Step 4 records a per-track status ([models.ItemStatus]) and always continues,
// so the counters of the returned [models.TransferOutcome] satisfy Transferred + NotFound == Total.
//
// [TransferEngine.DryRun] runs steps 1, 2 and the search of step 4 without changing anything in the destination.
//
// # Progress Reporting
//
// Both operations accept an optional channel of [ProgressUpdate]. Sends block until the consumer reads the update or
// the context ends, so a consumer sees every per-track result in order. The channel is never closed by the engine.
package tasks
