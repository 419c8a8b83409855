/*
Package ports defines the driven ports (interfaces) of the pipenet dashboard core.

These interfaces decouple the topology model from external implementations, allowing
the core to work against the real plant backend, test doubles, and different renderers.

# Key Interfaces

  - TopologySource: Fetches the current list of pipe segments.
  - RouteSuggester: Asks the backend for a candidate route (the pathfinding is server-side).
  - OperationStarter / ValveSwitcher: Mutating backend calls that oblige a topology refresh.
  - DiagramRenderer: Mounts a generated diagram description into a named container.
  - Notifier: Delivers transient operator notifications.
  - InvalidationBus: Propagates "topology changed" signals between dashboard instances.
*/
package ports
