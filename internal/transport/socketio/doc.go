// Package socketio carries coordinator traffic over socket.io.
//
// The coordinator process runs a Server. Worker and submitter processes
// connect with a Client. Every payload is a JSON document sent as a string
// argument, so both ends agree on types regardless of how the socket.io
// libraries decode events.
//
// Events:
//
//	worker -> coordinator   worker.register    {capacity}
//	coordinator -> worker   worker.registered  {name, capacity}
//	coordinator -> worker   task.execute       {id, request}
//	worker -> coordinator   task.result        {id, value, error}
//	submitter -> coord.     job.submit         {id, job, mode}
//	coordinator -> subm.    job.task_finished  {id, task}
//	coordinator -> subm.    job.result         {id, results, error}
//
// A worker whose socket disconnects is deregistered and every call pending
// on it fails with transport.ErrConnection, which makes the coordinator retry
// the task elsewhere.
package socketio
