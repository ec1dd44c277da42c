package entity

// InstanceState is the EC2 lifecycle state of a resource, keyed by instance ID.
type InstanceState map[string]string
