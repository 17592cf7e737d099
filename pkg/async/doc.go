// Package async runs functions in goroutines and collects their results as futures.
//
// Async starts a function and returns a *Future. Await blocks for the result,
// AwaitContext bounds the wait by a context, and WaitAll gathers several
// futures of the same type, joining their errors.
//
//	body := async.Async(ctx, prompt, gen.GenerateBody)
//	subject := async.Async(ctx, prompt, gen.GenerateSubject)
//
//	results, err := async.WaitAll(body, subject)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(results[1], results[0])
package async
